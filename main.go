package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/email"
	"backend/internal/handlers"
	"backend/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("cart index warning: %v", err)
	}

	mailer := email.NewMailer(
		config.AppEnv.EmailHost,
		config.AppEnv.EmailPort,
		config.AppEnv.EmailUser,
		config.AppEnv.EmailPassword,
		config.AppEnv.EmailSenderName,
		config.AppEnv.DefaultOrderEmail,
	)

	secret := config.AppEnv.JWTSecret

	r := gin.Default()

	r.POST("/auth/login", handlers.Login(db, secret, config.AppEnv.SessionTTL))
	r.GET("/auth/me", middleware.UserAuth(secret), handlers.GetMe(db))

	r.GET("/products", middleware.UserAuth(secret), handlers.GetProducts(db))

	cart := r.Group("/cart")
	cart.Use(middleware.UserAuth(secret))
	{
		cart.GET("", handlers.GetCartItems(db))
		cart.POST("", handlers.AddToCart(db))
		cart.PATCH("/:id/note", handlers.UpdateCartItemNote(db))
		cart.DELETE("/:id", handlers.RemoveCartItem(db))
	}

	orders := r.Group("/orders")
	orders.Use(middleware.UserAuth(secret))
	{
		orders.GET("", handlers.GetOrders(db))
		orders.GET("/recent", handlers.GetRecentOrders(db))
		orders.GET("/:id", handlers.GetOrder(db))
		orders.POST("", handlers.CreateOrder(db))
		orders.POST("/checkout", handlers.Checkout(db, mailer))
		orders.PATCH("/:id", handlers.UpdateOrder(db, mailer))
		orders.DELETE("/:id", handlers.DeleteOrder(db))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(secret))
	{
		admin.GET("/users", handlers.GetAllUsers(db))
		admin.POST("/users", handlers.CreateUser(db))
		admin.PUT("/users/:id", handlers.UpdateUser(db))
		admin.DELETE("/users/:id", handlers.DeleteUser(db))

		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))
	}

	r.Run(":" + config.AppEnv.Port)
}
