package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/buitrongtan91/mern-food-ordering-app-backend/middlewares"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/models"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/utils"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// CreateUser registers a record for a freshly logged-in identity subject.
// Runs behind token verification only; the caller has no user row yet.
func (uc *UserController) CreateUser(c *gin.Context) {
	type request struct {
		Auth0ID      string `json:"auth0Id" binding:"required"`
		Email        string `json:"email" binding:"required,email"`
		Name         string `json:"name"`
		AddressLine1 string `json:"addressLine1"`
		City         string `json:"city"`
		Country      string `json:"country"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var existing models.User
	err := uc.DB.Where("auth0_id = ?", req.Auth0ID).First(&existing).Error
	if err == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("user already exists"))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Auth0ID:      req.Auth0ID,
		Email:        req.Email,
		Name:         req.Name,
		AddressLine1: req.AddressLine1,
		City:         req.City,
		Country:      req.Country,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New user created: %s", user.Auth0ID)
	utils.RespondJSON(c, http.StatusCreated, "User created", user)
}

// UpdateUser overwrites the caller's profile fields.
func (uc *UserController) UpdateUser(c *gin.Context) {
	type request struct {
		Name         string `json:"name" binding:"required"`
		AddressLine1 string `json:"addressLine1" binding:"required"`
		City         string `json:"city" binding:"required"`
		Country      string `json:"country" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, ok := middlewares.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	user.Name = req.Name
	user.AddressLine1 = req.AddressLine1
	user.City = req.City
	user.Country = req.Country
	if err := uc.DB.Save(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "User updated", user)
}

// GetCurrentUser returns the caller's record.
func (uc *UserController) GetCurrentUser(c *gin.Context) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Current user", user)
}
