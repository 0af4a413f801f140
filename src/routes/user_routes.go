package routes

import (
	"github.com/gofiber/fiber/v2"

	"flock/src/controllers"
	"flock/src/middleware"
)

// UserRoutes sets up profile, follow, suggestion, and profile-update routes.
func UserRoutes(app *fiber.App) {
	users := app.Group("/api/users", middleware.ProtectRoute)

	users.Get("/profile/:username", controllers.GetUserProfile)
	users.Get("/suggested", controllers.GetSuggestedUsers)
	users.Post("/follow/:id", controllers.FollowUnfollowUser)
	users.Post("/update", controllers.UpdateUser)
}
