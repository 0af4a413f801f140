package main

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"flock/src/lib"
	"flock/src/routes"
)

func main() {
	// Missing .env is fine, config falls back to real environment variables.
	godotenv.Load()

	app := fiber.New()

	clientURL := os.Getenv("CLIENT_URL")
	if clientURL == "" {
		clientURL = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     clientURL,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
	}))

	lib.ConnectDB()
	lib.ConnectCloudinary()

	routes.AuthRoutes(app)
	routes.UserRoutes(app)
	routes.PostRoutes(app)
	routes.NotificationRoutes(app)

	var port string = os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	app.Static("/", "./public")

	fmt.Println("Server is running on http://localhost:" + port)
	app.Listen(":" + port)
}
