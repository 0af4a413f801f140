package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flock/src/lib"
	"flock/src/models"
)

// NotificationDto is a notification with the sender resolved to their public
// profile.
type NotificationDto struct {
	ID        primitive.ObjectID      `json:"id"`
	From      models.UserDto          `json:"from"`
	To        primitive.ObjectID      `json:"to"`
	Type      models.NotificationType `json:"type"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"createdAt"`
}

// GetNotifications returns the authenticated user's notifications, newest
// first, with senders populated. Side effect: everything returned is marked
// read.
func GetNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	collection := lib.DB.Collection("notifications")
	filter := bson.M{"to": user.Id}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := collection.Find(c.Context(), filter, opts)
	if err != nil {
		log.Printf("Error finding notifications: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Internal server error"))
	}
	defer cursor.Close(c.Context())

	var notifications []models.Notification
	if err := cursor.All(c.Context(), &notifications); err != nil {
		log.Printf("Error decoding notifications: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Internal server error"))
	}

	seen := make(map[primitive.ObjectID]struct{})
	fromIDs := make([]primitive.ObjectID, 0, len(notifications))
	for _, notification := range notifications {
		if _, ok := seen[notification.From]; !ok {
			seen[notification.From] = struct{}{}
			fromIDs = append(fromIDs, notification.From)
		}
	}

	senders, err := lib.FindUserDtos(c, fromIDs)
	if err != nil {
		log.Printf("Error populating notification senders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Internal server error"))
	}

	response := make([]NotificationDto, 0, len(notifications))
	for _, notification := range notifications {
		response = append(response, NotificationDto{
			ID:        notification.Id,
			From:      senders[notification.From],
			To:        notification.To,
			Type:      notification.Type,
			Read:      notification.Read,
			CreatedAt: notification.CreatedAt,
		})
	}

	update := bson.M{"$set": bson.M{"read": true, "updatedAt": time.Now()}}
	if _, err := collection.UpdateMany(c.Context(), filter, update); err != nil {
		// Marking read is best effort, the list is already assembled.
		log.Printf("Error marking notifications as read: %v", err)
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// DeleteNotifications deletes all of the authenticated user's notifications.
func DeleteNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	collection := lib.DB.Collection("notifications")
	if _, err := collection.DeleteMany(c.Context(), bson.M{"to": user.Id}); err != nil {
		log.Printf("Error deleting notifications: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Internal server error"))
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Notifications deleted successfully"))
}
