package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"flock/src/lib"
	"flock/src/models"
)

// GetUserProfile returns the public profile for a username.
func GetUserProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	var user models.User
	collection := lib.DB.Collection("users")
	if err := collection.FindOne(c.Context(), bson.M{"username": username}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("User not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error fetching user"))
	}

	user.Password = ""

	return c.Status(fiber.StatusOK).JSON(user)
}

// FollowUnfollowUser toggles the authenticated user's follow on another user,
// keeping following/followers in sync on both sides. A fresh follow notifies
// the target.
func FollowUnfollowUser(c *fiber.Ctx) error {
	targetID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid user ID format"))
	}

	user := c.Locals("user").(models.User)

	if user.Id == targetID {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("You can't follow/unfollow yourself"))
	}

	collection := lib.DB.Collection("users")

	var target models.User
	if err := collection.FindOne(c.Context(), bson.M{"_id": targetID}).Decode(&target); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("User not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error fetching user"))
	}

	alreadyFollowing := false
	for _, id := range user.Following {
		if id == targetID {
			alreadyFollowing = true
			break
		}
	}

	if alreadyFollowing {
		_, err = collection.UpdateOne(c.Context(), bson.M{"_id": user.Id},
			bson.M{"$pull": bson.M{"following": targetID}})
		if err == nil {
			_, err = collection.UpdateOne(c.Context(), bson.M{"_id": targetID},
				bson.M{"$pull": bson.M{"followers": user.Id}})
		}
		if err != nil {
			log.Printf("Error unfollowing user: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to unfollow user"))
		}

		return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("User unfollowed successfully"))
	}

	_, err = collection.UpdateOne(c.Context(), bson.M{"_id": user.Id},
		bson.M{"$push": bson.M{"following": targetID}})
	if err == nil {
		_, err = collection.UpdateOne(c.Context(), bson.M{"_id": targetID},
			bson.M{"$push": bson.M{"followers": user.Id}})
	}
	if err != nil {
		log.Printf("Error following user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to follow user"))
	}

	notification := models.Notification{
		Id:        primitive.NewObjectID(),
		From:      user.Id,
		To:        targetID,
		Type:      models.NotificationTypeFollow,
		Read:      false,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	notificationsCollection := lib.DB.Collection("notifications")
	if _, err := notificationsCollection.InsertOne(c.Context(), notification); err != nil {
		// The notification is not critical, log and continue.
		log.Printf("Error creating notification: %v", err)
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("User followed successfully"))
}

// GetSuggestedUsers returns up to 4 random users the authenticated user does
// not already follow.
func GetSuggestedUsers(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	excluded := make([]primitive.ObjectID, 0, len(user.Following)+1)
	excluded = append(excluded, user.Following...)
	excluded = append(excluded, user.Id)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$nin": excluded}}}},
		{{Key: "$sample", Value: bson.M{"size": 4}}},
		{{Key: "$project", Value: bson.M{"password": 0}}},
	}

	collection := lib.DB.Collection("users")
	cursor, err := collection.Aggregate(c.Context(), pipeline)
	if err != nil {
		log.Printf("Error sampling suggested users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error fetching suggested users"))
	}
	defer cursor.Close(c.Context())

	suggested := make([]models.User, 0, 4)
	if err := cursor.All(c.Context(), &suggested); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error decoding suggested users"))
	}

	return c.Status(fiber.StatusOK).JSON(suggested)
}

// UpdateUser updates the authenticated user's profile. Password changes
// require the current password; image changes replace the hosted asset.
func UpdateUser(c *fiber.Ctx) error {
	type UpdateUserRequest struct {
		FullName        string `json:"fullName"`
		Email           string `json:"email"`
		Username        string `json:"username"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		Bio             string `json:"bio"`
		Link            string `json:"link"`
		ProfileImg      string `json:"profileImg"`
		CoverImg        string `json:"coverImg"`
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}

	authUser := c.Locals("user").(models.User)

	collection := lib.DB.Collection("users")

	var user models.User
	if err := collection.FindOne(c.Context(), bson.M{"_id": authUser.Id}).Decode(&user); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("User not found"))
	}

	if (req.CurrentPassword == "") != (req.NewPassword == "") {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Please provide both current password and new password"))
	}

	updates := bson.M{"updatedAt": time.Now()}

	if req.CurrentPassword != "" && req.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Current password is incorrect"))
		}
		if len(req.NewPassword) < 6 {
			return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Password must be at least 6 characters long"))
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Internal server error"))
		}
		updates["password"] = string(hashed)
	}

	if req.ProfileImg != "" {
		if user.ProfileImg != "" {
			if err := lib.DestroyImage(c.Context(), user.ProfileImg); err != nil {
				log.Printf("Error deleting old profile image: %v", err)
			}
		}
		uploadedURL, err := lib.UploadImage(c.Context(), req.ProfileImg)
		if err != nil {
			log.Printf("Error uploading profile image: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error uploading image"))
		}
		updates["profileImg"] = uploadedURL
	}

	if req.CoverImg != "" {
		if user.CoverImg != "" {
			if err := lib.DestroyImage(c.Context(), user.CoverImg); err != nil {
				log.Printf("Error deleting old cover image: %v", err)
			}
		}
		uploadedURL, err := lib.UploadImage(c.Context(), req.CoverImg)
		if err != nil {
			log.Printf("Error uploading cover image: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error uploading image"))
		}
		updates["coverImg"] = uploadedURL
	}

	if req.FullName != "" {
		updates["fullName"] = req.FullName
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Username != "" {
		updates["username"] = req.Username
	}
	if req.Bio != "" {
		updates["bio"] = req.Bio
	}
	if req.Link != "" {
		updates["link"] = req.Link
	}

	var updatedUser models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := collection.FindOneAndUpdate(c.Context(), bson.M{"_id": user.Id}, bson.M{"$set": updates}, opts).Decode(&updatedUser)
	if err != nil {
		log.Printf("Error updating user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to update user"))
	}

	updatedUser.Password = ""

	return c.Status(fiber.StatusOK).JSON(updatedUser)
}
