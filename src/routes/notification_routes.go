package routes

import (
	"github.com/gofiber/fiber/v2"

	"flock/src/controllers"
	"flock/src/middleware"
)

// NotificationRoutes sets up listing and deletion of notifications.
func NotificationRoutes(app *fiber.App) {
	notifications := app.Group("/api/notifications", middleware.ProtectRoute)

	notifications.Get("/", controllers.GetNotifications)
	notifications.Delete("/", controllers.DeleteNotifications)
}
