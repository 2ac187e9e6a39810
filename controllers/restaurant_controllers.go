package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/buitrongtan91/mern-food-ordering-app-backend/middlewares"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/models"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/services"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/utils"
)

const searchPageSize = 10

type RestaurantController struct {
	DB       *gorm.DB
	Uploader services.ImageUploader
}

func NewRestaurantController(db *gorm.DB, uploader services.ImageUploader) *RestaurantController {
	return &RestaurantController{DB: db, Uploader: uploader}
}

// restaurantForm is the multipart body shared by create and update. Menu
// items arrive as a JSON-encoded field because nested multipart binding is
// not worth the trouble.
type restaurantForm struct {
	RestaurantName        string   `form:"restaurantName" binding:"required"`
	City                  string   `form:"city" binding:"required"`
	Country               string   `form:"country" binding:"required"`
	DeliveryPrice         int64    `form:"deliveryPrice" binding:"min=0"`
	EstimatedDeliveryTime int      `form:"estimatedDeliveryTime" binding:"min=0"`
	Cuisines              []string `form:"cuisines" binding:"required,min=1"`
	MenuItems             string   `form:"menuItems" binding:"required"`
}

type menuItemPayload struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func parseMenuItems(raw string) ([]models.MenuItem, error) {
	var payload []menuItemPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("menuItems must be a JSON array: %w", err)
	}
	items := make([]models.MenuItem, 0, len(payload))
	for i, p := range payload {
		if p.Name == "" {
			return nil, fmt.Errorf("menu item %d has no name", i)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("menu item %q has a negative price", p.Name)
		}
		items = append(items, models.MenuItem{Name: p.Name, Price: p.Price})
	}
	return items, nil
}

// CreateRestaurant creates the caller's restaurant. One restaurant per owner,
// enforced by an existence check.
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var existing models.Restaurant
	err := rc.DB.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("restaurant already exists"))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var form restaurantForm
	if err := c.ShouldBind(&form); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	menuItems, err := parseMenuItems(form.MenuItems)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	fileHeader, err := c.FormFile("imageFile")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("imageFile is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	defer file.Close()

	imageURL, err := rc.Uploader.Upload(c.Request.Context(), file)
	if err != nil {
		utils.ErrorLogger.Printf("image upload failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	restaurant := models.Restaurant{
		UserID:                userID,
		RestaurantName:        form.RestaurantName,
		City:                  form.City,
		Country:               form.Country,
		DeliveryPrice:         form.DeliveryPrice,
		EstimatedDeliveryTime: form.EstimatedDeliveryTime,
		Cuisines:              form.Cuisines,
		MenuItems:             menuItems,
		ImageURL:              imageURL,
		LastUpdated:           time.Now(),
	}
	if err := rc.DB.Create(&restaurant).Error; err != nil {
		utils.ErrorLogger.Printf("create restaurant failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Restaurant created", restaurant)
}

// GetRestaurant returns the caller's restaurant.
func (rc *RestaurantController) GetRestaurant(c *gin.Context) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.Preload("MenuItems").Where("user_id = ?", userID).First(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// UpdateRestaurant replaces the caller's restaurant wholesale. No per-field
// merge: the form carries the full payload every time.
func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.Preload("MenuItems").Where("user_id = ?", userID).First(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	var form restaurantForm
	if err := c.ShouldBind(&form); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	menuItems, err := parseMenuItems(form.MenuItems)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurant.RestaurantName = form.RestaurantName
	restaurant.City = form.City
	restaurant.Country = form.Country
	restaurant.DeliveryPrice = form.DeliveryPrice
	restaurant.EstimatedDeliveryTime = form.EstimatedDeliveryTime
	restaurant.Cuisines = form.Cuisines
	restaurant.LastUpdated = time.Now()

	if fileHeader, ferr := c.FormFile("imageFile"); ferr == nil {
		file, oerr := fileHeader.Open()
		if oerr != nil {
			utils.RespondError(c, http.StatusInternalServerError, oerr)
			return
		}
		defer file.Close()
		imageURL, uerr := rc.Uploader.Upload(c.Request.Context(), file)
		if uerr != nil {
			utils.ErrorLogger.Printf("image upload failed: %v", uerr)
			utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
			return
		}
		restaurant.ImageURL = imageURL
	}

	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.MenuItem{}).Error; err != nil {
			return err
		}
		restaurant.MenuItems = menuItems
		return tx.Save(&restaurant).Error
	})
	if err != nil {
		utils.ErrorLogger.Printf("update restaurant failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", restaurant)
}

type searchPagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

type searchResponse struct {
	Data       []models.Restaurant `json:"data"`
	Pagination searchPagination    `json:"pagination"`
}

// column whitelist: sort options come straight from the query string.
var searchSortColumns = map[string]string{
	"lastUpdated":           "last_updated",
	"deliveryPrice":         "delivery_price",
	"estimatedDeliveryTime": "estimated_delivery_time",
	"restaurantName":        "restaurant_name",
}

// SearchRestaurants is the public city search. A city with zero restaurants
// answers 404 with an empty page, which is distinct from a known city whose
// results were all filtered away (200 with an empty page).
func (rc *RestaurantController) SearchRestaurants(c *gin.Context) {
	city := c.Param("city")
	searchQuery := c.Query("searchQuery")
	selectedCuisines := c.Query("selectedCuisines")
	sortOption := c.DefaultQuery("sortOption", "lastUpdated")
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	var cityCount int64
	if err := rc.DB.Model(&models.Restaurant{}).Where("city LIKE ?", "%"+city+"%").Count(&cityCount).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if cityCount == 0 {
		c.JSON(http.StatusNotFound, searchResponse{
			Data:       []models.Restaurant{},
			Pagination: searchPagination{Total: 0, Page: page, Pages: 0},
		})
		return
	}

	// Rebuilt per use: gorm queries are not safely reusable after Count.
	filtered := func() *gorm.DB {
		q := rc.DB.Model(&models.Restaurant{}).Where("city LIKE ?", "%"+city+"%")
		if selectedCuisines != "" {
			// all-of across the selected cuisines
			for _, cuisine := range strings.Split(selectedCuisines, ",") {
				q = q.Where("cuisines LIKE ?", "%"+cuisine+"%")
			}
		}
		if searchQuery != "" {
			// any-of across name and cuisine tags
			pattern := "%" + searchQuery + "%"
			q = q.Where("restaurant_name LIKE ? OR cuisines LIKE ?", pattern, pattern)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	column, ok := searchSortColumns[sortOption]
	if !ok {
		column = "last_updated"
	}

	restaurants := []models.Restaurant{}
	err = filtered().
		Order(column).
		Offset((page - 1) * searchPageSize).
		Limit(searchPageSize).
		Preload("MenuItems").
		Find(&restaurants).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	pages := int((total + searchPageSize - 1) / searchPageSize)
	c.JSON(http.StatusOK, searchResponse{
		Data:       restaurants,
		Pagination: searchPagination{Total: total, Page: page, Pages: pages},
	})
}

// GetRestaurantByID is the public, unauthenticated lookup.
func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid restaurant id"))
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.Preload("MenuItems").First(&restaurant, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// GetRestaurantOrders lists orders placed against the caller's restaurant.
func (rc *RestaurantController) GetRestaurantOrders(c *gin.Context) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.Where("user_id = ?", userID).First(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	var orders []models.Order
	err := rc.DB.Where("restaurant_id = ?", restaurant.ID).
		Preload("CartItems").
		Preload("Restaurant").
		Preload("Restaurant.MenuItems").
		Preload("User").
		Find(&orders).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant orders", orders)
}

// UpdateOrderStatus lets the restaurant owner set an order's status. Any
// enum member is accepted regardless of the current value; only membership
// is checked.
func (rc *RestaurantController) UpdateOrderStatus(c *gin.Context) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	orderID, err := strconv.Atoi(c.Param("orderId"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	type request struct {
		Status string `json:"status" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !models.ValidOrderStatus(req.Status) {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown order status %q", req.Status))
		return
	}

	var order models.Order
	if err := rc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, order.RestaurantID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}
	if restaurant.UserID != userID {
		utils.RespondError(c, http.StatusForbidden, errors.New("order does not belong to your restaurant"))
		return
	}

	order.Status = req.Status
	if err := rc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}
