package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buitrongtan91/mern-food-ordering-app-backend/middlewares"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/models"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/services"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/utils"
)

type OrderController struct {
	DB      *gorm.DB
	Gateway services.PaymentGateway
}

func NewOrderController(db *gorm.DB, gateway services.PaymentGateway) *OrderController {
	return &OrderController{DB: db, Gateway: gateway}
}

type checkoutCartItem struct {
	MenuItemID uint   `json:"menuItemId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
}

type checkoutDeliveryDetails struct {
	Email        string `json:"email" binding:"required,email"`
	Name         string `json:"name" binding:"required"`
	AddressLine1 string `json:"addressLine1" binding:"required"`
	City         string `json:"city" binding:"required"`
}

type checkoutSessionRequest struct {
	CartItems       []checkoutCartItem      `json:"cartItems" binding:"required,min=1,dive"`
	DeliveryDetails checkoutDeliveryDetails `json:"deliveryDetails" binding:"required"`
	RestaurantID    uint                    `json:"restaurantId" binding:"required"`
}

// CreateCheckoutSession builds an order from the cart and asks the gateway
// for a hosted payment page. The order is persisted in placed state before
// the gateway call and deleted again if that call fails, so a gateway outage
// leaves no half-created order and a crash leaves no session pointing at a
// missing record.
func (oc *OrderController) CreateCheckoutSession(c *gin.Context) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var req checkoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var restaurant models.Restaurant
	if err := oc.DB.Preload("MenuItems").First(&restaurant, req.RestaurantID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	// Price every cart line against the restaurant's current menu before
	// anything is written. A stale cart aborts the whole request.
	lineItems := make([]services.CheckoutLineItem, 0, len(req.CartItems))
	cartItems := make([]models.OrderCartItem, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		menuItem, found := restaurant.FindMenuItem(item.MenuItemID)
		if !found {
			utils.ErrorLogger.Printf("cart references menu item %d missing from restaurant %d", item.MenuItemID, restaurant.ID)
			utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
			return
		}
		lineItems = append(lineItems, services.CheckoutLineItem{
			Name:      menuItem.Name,
			UnitPrice: menuItem.Price,
			Quantity:  int64(item.Quantity),
		})
		cartItems = append(cartItems, models.OrderCartItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Quantity:   item.Quantity,
		})
	}

	order := models.Order{
		Reference:    uuid.NewString(),
		RestaurantID: restaurant.ID,
		UserID:       userID,
		DeliveryDetails: models.DeliveryDetails{
			Email:        req.DeliveryDetails.Email,
			Name:         req.DeliveryDetails.Name,
			AddressLine1: req.DeliveryDetails.AddressLine1,
			City:         req.DeliveryDetails.City,
		},
		CartItems: cartItems,
		Status:    models.OrderStatusPlaced,
		CreatedAt: time.Now(),
	}
	if err := oc.DB.Create(&order).Error; err != nil {
		utils.ErrorLogger.Printf("persist order failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	session, err := oc.Gateway.CreateCheckoutSession(c.Request.Context(), services.CheckoutParams{
		OrderReference: order.Reference,
		RestaurantID:   restaurant.ID,
		LineItems:      lineItems,
		DeliveryPrice:  restaurant.DeliveryPrice,
	})
	if err != nil {
		// compensate: the provisional order must not survive a failed session
		if derr := oc.deleteOrder(&order); derr != nil {
			utils.ErrorLogger.Printf("rollback of order %d failed: %v", order.ID, derr)
		}
		utils.ErrorLogger.Printf("create checkout session failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	utils.InfoLogger.Printf("Checkout session %s created for order %s", session.ID, order.Reference)
	utils.RespondJSON(c, http.StatusOK, "Checkout session created", gin.H{"url": session.URL})
}

func (oc *OrderController) deleteOrder(order *models.Order) error {
	return oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderCartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(order).Error
	})
}

// HandleWebhook processes gateway callbacks. Anything with a bad signature is
// rejected outright; every event type we do not care about is acknowledged so
// the gateway stops retrying.
func (oc *OrderController) HandleWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("failed to read request body"))
		return
	}

	event, err := oc.Gateway.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		utils.ErrorLogger.Printf("webhook verification failed: %v", err)
		utils.RespondError(c, http.StatusBadRequest, errors.New("webhook verification failed"))
		return
	}

	if event.Type != services.EventCheckoutCompleted {
		c.Status(http.StatusOK)
		return
	}

	var order models.Order
	if err := oc.DB.Where("reference = ?", event.OrderReference).First(&order).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	err = oc.DB.Transaction(func(tx *gorm.DB) error {
		var processed models.PaymentEvent
		err := tx.Where("event_id = ?", event.ID).First(&processed).Error
		if err == nil {
			// duplicate delivery, already applied
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(&models.PaymentEvent{
			EventID:     event.ID,
			OrderID:     order.ID,
			ProcessedAt: time.Now(),
		}).Error; err != nil {
			return err
		}
		order.TotalAmount = event.AmountTotal
		order.Status = models.OrderStatusPaid
		return tx.Save(&order).Error
	})
	if err != nil {
		utils.ErrorLogger.Printf("webhook handling failed for event %s: %v", event.ID, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	c.Status(http.StatusOK)
}

// GetMyOrders lists the caller's orders with restaurant and user expanded.
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var orders []models.Order
	err := oc.DB.Where("user_id = ?", userID).
		Preload("CartItems").
		Preload("Restaurant").
		Preload("Restaurant.MenuItems").
		Preload("User").
		Find(&orders).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "My orders", orders)
}
