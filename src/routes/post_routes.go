package routes

import (
	"github.com/gofiber/fiber/v2"

	"flock/src/controllers"
	"flock/src/middleware"
)

// PostRoutes sets up post routes: feeds, creation, deletion, comments, and
// likes. Static segments are registered before the parameterized ones.
func PostRoutes(app *fiber.App) {
	posts := app.Group("/api/posts")

	posts.Get("/", controllers.GetAllPosts)
	posts.Get("/following", middleware.ProtectRoute, controllers.GetFollowingPosts)
	posts.Get("/liked/:id", controllers.GetLikedPosts)
	posts.Get("/user/:username", controllers.GetUserPosts)
	posts.Post("/", middleware.ProtectRoute, controllers.CreatePost)
	posts.Post("/:id/comment", middleware.ProtectRoute, controllers.CommentOnPost)
	posts.Post("/:id/like", middleware.ProtectRoute, controllers.LikeUnlikePost)
	posts.Delete("/:id", middleware.ProtectRoute, controllers.DeletePost)
}
