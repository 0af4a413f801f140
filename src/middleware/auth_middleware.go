package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"flock/src/lib"
	"flock/src/models"
)

// ProtectRoute checks the auth cookie for a valid JWT, loads the user it
// names and attaches it to the request context under "user".
func ProtectRoute(c *fiber.Ctx) error {
	token := c.Cookies(lib.AuthCookieName)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Unauthorized: No Token Provided"))
	}

	claims, err := lib.VerifyJWT(token)
	if err != nil || claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Unauthorized: Invalid Token"))
	}

	userIDHex, ok := claims["userId"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Unauthorized: Invalid Token"))
	}

	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Unauthorized: Invalid Token"))
	}

	var user models.User
	collection := lib.DB.Collection("users")
	if err := collection.FindOne(c.Context(), bson.M{"_id": userID}).Decode(&user); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("User not found"))
	}

	user.Password = ""

	c.Locals("user", user)

	return c.Next()
}
