package controllers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/buitrongtan91/mern-food-ordering-app-backend/controllers"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/models"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/services"
)

func setupOrderRouter(db *gorm.DB, gateway *fakeGateway, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := controllers.NewOrderController(db, gateway)

	authed := r.Group("/order", asUser(userID))
	authed.POST("/checkout/create-checkout-session", ctrl.CreateCheckoutSession)
	authed.GET("/my-orders", ctrl.GetMyOrders)

	r.POST("/order/checkout/webhook", ctrl.HandleWebhook)
	return r
}

func checkoutPayload(restaurantID uint, items []map[string]interface{}) []byte {
	payload, _ := json.Marshal(map[string]interface{}{
		"cartItems": items,
		"deliveryDetails": map[string]string{
			"email":        "customer@example.com",
			"name":         "Customer",
			"addressLine1": "1 Main St",
			"city":         "Hanoi",
		},
		"restaurantId": restaurantID,
	})
	return payload
}

func postCheckout(r *gin.Engine, payload []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/order/checkout/create-checkout-session", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCheckoutSession(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "auth0|owner", "owner@example.com")
	customer := seedUser(t, db, "auth0|customer", "customer@example.com")
	restaurant := seedRestaurant(t, db, owner.ID, "Pasta Palace", "Hanoi", 500, []string{"Italian"}, []models.MenuItem{
		{Name: "Carbonara", Price: 1200},
		{Name: "Lasagna", Price: 1500},
	})
	var menu models.Restaurant
	require.NoError(t, db.Preload("MenuItems").First(&menu, restaurant.ID).Error)

	gateway := &fakeGateway{sessionURL: "https://checkout.example.com/s/abc"}
	r := setupOrderRouter(db, gateway, customer.ID)

	payload := checkoutPayload(restaurant.ID, []map[string]interface{}{
		{"menuItemId": menu.MenuItems[0].ID, "name": "Carbonara", "quantity": 2},
		{"menuItemId": menu.MenuItems[1].ID, "name": "Lasagna", "quantity": 1},
	})
	w := postCheckout(r, payload)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w.Body.Bytes())
	assert.Equal(t, "https://checkout.example.com/s/abc", resp["data"].(map[string]interface{})["url"])

	// the gateway got priced lines plus the flat delivery fee
	require.NotNil(t, gateway.lastParams)
	var lineTotal int64
	for _, li := range gateway.lastParams.LineItems {
		lineTotal += li.UnitPrice * li.Quantity
	}
	assert.Equal(t, int64(2*1200+1500), lineTotal)
	assert.Equal(t, int64(500), gateway.lastParams.DeliveryPrice)
	assert.Equal(t, int64(2*1200+1500)+int64(500), lineTotal+gateway.lastParams.DeliveryPrice)

	// order persisted in placed state, referenced by what the gateway saw
	var order models.Order
	require.NoError(t, db.Preload("CartItems").Where("reference = ?", gateway.lastParams.OrderReference).First(&order).Error)
	assert.Equal(t, models.OrderStatusPlaced, order.Status)
	assert.Equal(t, customer.ID, order.UserID)
	assert.Len(t, order.CartItems, 2)
	assert.Zero(t, order.TotalAmount)
}

func TestCreateCheckoutSessionUnknownMenuItem(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "auth0|owner", "owner@example.com")
	customer := seedUser(t, db, "auth0|customer", "customer@example.com")
	restaurant := seedRestaurant(t, db, owner.ID, "Pasta Palace", "Hanoi", 500, []string{"Italian"}, []models.MenuItem{{Name: "Carbonara", Price: 1200}})

	gateway := &fakeGateway{}
	r := setupOrderRouter(db, gateway, customer.ID)

	payload := checkoutPayload(restaurant.ID, []map[string]interface{}{
		{"menuItemId": 99999, "name": "Ghost Dish", "quantity": 1},
	})
	w := postCheckout(r, payload)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, gateway.lastParams)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateCheckoutSessionRestaurantNotFound(t *testing.T) {
	db := setupTestDB(t)
	customer := seedUser(t, db, "auth0|customer", "customer@example.com")
	r := setupOrderRouter(db, &fakeGateway{}, customer.ID)

	payload := checkoutPayload(424242, []map[string]interface{}{
		{"menuItemId": 1, "name": "Anything", "quantity": 1},
	})
	w := postCheckout(r, payload)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCheckoutSessionGatewayFailureRollsBack(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "auth0|owner", "owner@example.com")
	customer := seedUser(t, db, "auth0|customer", "customer@example.com")
	restaurant := seedRestaurant(t, db, owner.ID, "Pasta Palace", "Hanoi", 500, []string{"Italian"}, []models.MenuItem{{Name: "Carbonara", Price: 1200}})
	var menu models.Restaurant
	require.NoError(t, db.Preload("MenuItems").First(&menu, restaurant.ID).Error)

	gateway := &fakeGateway{createErr: errors.New("gateway down")}
	r := setupOrderRouter(db, gateway, customer.ID)

	payload := checkoutPayload(restaurant.ID, []map[string]interface{}{
		{"menuItemId": menu.MenuItems[0].ID, "name": "Carbonara", "quantity": 1},
	})
	w := postCheckout(r, payload)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// the provisional order was compensated away
	var orders, items int64
	db.Model(&models.Order{}).Count(&orders)
	db.Model(&models.OrderCartItem{}).Count(&items)
	assert.Equal(t, int64(0), orders)
	assert.Equal(t, int64(0), items)
}

func seedPlacedOrder(t *testing.T, db *gorm.DB, restaurantID, userID uint, reference string) models.Order {
	t.Helper()
	order := models.Order{
		Reference:    reference,
		RestaurantID: restaurantID,
		UserID:       userID,
		Status:       models.OrderStatusPlaced,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestWebhookInvalidSignature(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "auth0|owner", "owner@example.com")
	customer := seedUser(t, db, "auth0|customer", "customer@example.com")
	restaurant := seedRestaurant(t, db, owner.ID, "Pasta Palace", "Hanoi", 500, nil, nil)
	order := seedPlacedOrder(t, db, restaurant.ID, customer.ID, "ref-sig")

	gateway := &fakeGateway{verifyErr: errors.New("signature mismatch")}
	r := setupOrderRouter(db, gateway, customer.ID)

	req := httptest.NewRequest("POST", "/order/checkout/webhook", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Stripe-Signature", "t=1,v1=bad")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var unchanged models.Order
	require.NoError(t, db.First(&unchanged, order.ID).Error)
	assert.Equal(t, models.OrderStatusPlaced, unchanged.Status)
	assert.Zero(t, unchanged.TotalAmount)
}

func TestWebhookCompletedTransitionIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "auth0|owner", "owner@example.com")
	customer := seedUser(t, db, "auth0|customer", "customer@example.com")
	restaurant := seedRestaurant(t, db, owner.ID, "Pasta Palace", "Hanoi", 500, nil, nil)
	order := seedPlacedOrder(t, db, restaurant.ID, customer.ID, "ref-paid")

	gateway := &fakeGateway{verifyEvent: &services.WebhookEvent{
		ID:             "evt_1",
		Type:           services.EventCheckoutCompleted,
		OrderReference: "ref-paid",
		AmountTotal:    2900,
	}}
	r := setupOrderRouter(db, gateway, customer.ID)

	deliver := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/order/checkout/webhook", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Stripe-Signature", "t=1,v1=good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := deliver()
	require.Equal(t, http.StatusOK, w.Code)

	var paid models.Order
	require.NoError(t, db.First(&paid, order.ID).Error)
	assert.Equal(t, models.OrderStatusPaid, paid.Status)
	assert.Equal(t, int64(2900), paid.TotalAmount)

	// replay of the same event id is acknowledged but applies nothing
	require.NoError(t, db.Model(&paid).Update("status", models.OrderStatusDelivered).Error)
	w = deliver()
	require.Equal(t, http.StatusOK, w.Code)

	var after models.Order
	require.NoError(t, db.First(&after, order.ID).Error)
	assert.Equal(t, models.OrderStatusDelivered, after.Status)

	var events int64
	db.Model(&models.PaymentEvent{}).Count(&events)
	assert.Equal(t, int64(1), events)
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	db := setupTestDB(t)
	customer := seedUser(t, db, "auth0|customer", "customer@example.com")
	gateway := &fakeGateway{verifyEvent: &services.WebhookEvent{ID: "evt_2", Type: "payment_intent.created"}}
	r := setupOrderRouter(db, gateway, customer.ID)

	req := httptest.NewRequest("POST", "/order/checkout/webhook", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Stripe-Signature", "t=1,v1=good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookUnknownOrder(t *testing.T) {
	db := setupTestDB(t)
	customer := seedUser(t, db, "auth0|customer", "customer@example.com")
	gateway := &fakeGateway{verifyEvent: &services.WebhookEvent{
		ID:             "evt_3",
		Type:           services.EventCheckoutCompleted,
		OrderReference: "ref-missing",
		AmountTotal:    100,
	}}
	r := setupOrderRouter(db, gateway, customer.ID)

	req := httptest.NewRequest("POST", "/order/checkout/webhook", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Stripe-Signature", "t=1,v1=good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMyOrders(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "auth0|owner", "owner@example.com")
	customer := seedUser(t, db, "auth0|customer", "customer@example.com")
	stranger := seedUser(t, db, "auth0|stranger", "stranger@example.com")
	restaurant := seedRestaurant(t, db, owner.ID, "Pasta Palace", "Hanoi", 500, nil, nil)

	seedPlacedOrder(t, db, restaurant.ID, customer.ID, "mine-1")
	seedPlacedOrder(t, db, restaurant.ID, stranger.ID, "not-mine")

	r := setupOrderRouter(db, &fakeGateway{}, customer.ID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/order/my-orders", nil))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w.Body.Bytes())
	data := resp["data"].([]interface{})
	require.Len(t, data, 1)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "mine-1", first["reference"])
	assert.Equal(t, "Pasta Palace", first["restaurant"].(map[string]interface{})["restaurantName"])
	assert.Equal(t, "customer@example.com", first["user"].(map[string]interface{})["email"])
}
