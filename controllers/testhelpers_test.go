package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/buitrongtan91/mern-food-ordering-app-backend/middlewares"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/models"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/services"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/utils"
)

var testDBCounter int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()
	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:controllers_test_%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderCartItem{},
		&models.PaymentEvent{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// asUser fakes the auth middleware pair by planting a resolved user id.
func asUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.CtxUserID, userID)
		c.Next()
	}
}

func seedUser(t *testing.T, db *gorm.DB, subject, email string) models.User {
	t.Helper()
	user := models.User{Auth0ID: subject, Email: email, Name: "Test User"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedRestaurant(t *testing.T, db *gorm.DB, ownerID uint, name, city string, deliveryPrice int64, cuisines []string, menu []models.MenuItem) models.Restaurant {
	t.Helper()
	restaurant := models.Restaurant{
		UserID:                ownerID,
		RestaurantName:        name,
		City:                  city,
		Country:               "Testland",
		DeliveryPrice:         deliveryPrice,
		EstimatedDeliveryTime: 30,
		Cuisines:              cuisines,
		MenuItems:             menu,
		ImageURL:              "https://img.example.com/r.jpg",
		LastUpdated:           time.Now(),
	}
	if err := db.Create(&restaurant).Error; err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	return restaurant
}

// fakeGateway is an in-memory services.PaymentGateway.
type fakeGateway struct {
	lastParams *services.CheckoutParams
	sessionURL string
	createErr  error

	verifyEvent *services.WebhookEvent
	verifyErr   error
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, p services.CheckoutParams) (*services.CheckoutSession, error) {
	f.lastParams = &p
	if f.createErr != nil {
		return nil, f.createErr
	}
	url := f.sessionURL
	if url == "" {
		url = "https://checkout.example.com/session/cs_test_123"
	}
	return &services.CheckoutSession{ID: "cs_test_123", URL: url}, nil
}

func (f *fakeGateway) VerifyWebhook(_ []byte, _ string) (*services.WebhookEvent, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if f.verifyEvent == nil {
		return nil, errors.New("no event configured")
	}
	return f.verifyEvent, nil
}

// fakeUploader is an in-memory services.ImageUploader.
type fakeUploader struct {
	url     string
	err     error
	uploads int
}

func (f *fakeUploader) Upload(_ context.Context, file io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	f.uploads++
	if f.err != nil {
		return "", f.err
	}
	if f.url == "" {
		return "https://img.example.com/uploaded.jpg", nil
	}
	return f.url, nil
}

// restaurantFormBody builds the multipart payload create/update expect.
func restaurantFormBody(t *testing.T, fields map[string]string, cuisines []string, menuItems interface{}, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for _, cuisine := range cuisines {
		if err := w.WriteField("cuisines", cuisine); err != nil {
			t.Fatalf("write cuisine: %v", err)
		}
	}
	menuJSON, err := json.Marshal(menuItems)
	if err != nil {
		t.Fatalf("marshal menu items: %v", err)
	}
	if err := w.WriteField("menuItems", string(menuJSON)); err != nil {
		t.Fatalf("write menuItems: %v", err)
	}
	if withImage {
		fw, err := w.CreateFormFile("imageFile", "restaurant.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte("fake-image-bytes")); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func decodeResponse(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, body)
	}
	return resp
}
