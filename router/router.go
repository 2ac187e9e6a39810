package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/buitrongtan91/mern-food-ordering-app-backend/config"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/controllers"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/middlewares"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/services"
)

func SetupRouter(db *gorm.DB, cfg config.Config, gateway services.PaymentGateway, uploader services.ImageUploader) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.FrontendURL))
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(db)
	restaurantCtrl := controllers.NewRestaurantController(db, uploader)
	orderCtrl := controllers.NewOrderController(db, gateway)

	jwtCheck := middlewares.JWTCheck(cfg)
	jwtParse := middlewares.JWTParse(db)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok"})
	})

	user := r.Group("/user")
	{
		// create runs before the user row exists, token check only
		user.POST("/create-new-user", jwtCheck, userCtrl.CreateUser)
		user.PUT("/update-user", jwtCheck, jwtParse, userCtrl.UpdateUser)
		user.GET("/get-current-user", jwtCheck, jwtParse, userCtrl.GetCurrentUser)
	}

	restaurant := r.Group("/restaurant")
	{
		restaurant.POST("/create-restaurant", jwtCheck, jwtParse, restaurantCtrl.CreateRestaurant)
		restaurant.PUT("/update-restaurant", jwtCheck, jwtParse, restaurantCtrl.UpdateRestaurant)
		restaurant.GET("/get-restaurant", jwtCheck, jwtParse, restaurantCtrl.GetRestaurant)
		restaurant.GET("/order", jwtCheck, jwtParse, restaurantCtrl.GetRestaurantOrders)
		restaurant.PATCH("/order/:orderId/status", jwtCheck, jwtParse, restaurantCtrl.UpdateOrderStatus)

		// public
		restaurant.GET("/search/:city", restaurantCtrl.SearchRestaurants)
		restaurant.GET("/:id", restaurantCtrl.GetRestaurantByID)
	}

	order := r.Group("/order")
	{
		order.POST("/checkout/create-checkout-session", jwtCheck, jwtParse, orderCtrl.CreateCheckoutSession)
		order.POST("/checkout/webhook", orderCtrl.HandleWebhook)
		order.GET("/my-orders", jwtCheck, jwtParse, orderCtrl.GetMyOrders)
	}

	return r
}
