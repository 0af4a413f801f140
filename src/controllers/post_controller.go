package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flock/src/lib"
	"flock/src/models"
)

// CreatePost creates a post for the authenticated user. An image, if present,
// is uploaded to the media host first and stored as its canonical URL.
func CreatePost(c *fiber.Ctx) error {
	type CreatePostRequest struct {
		Text string `json:"text"`
		Img  string `json:"img,omitempty"` // base64 payload or remote URL
	}

	authUser := c.Locals("user").(models.User)

	var user models.User
	usersCollection := lib.DB.Collection("users")
	if err := usersCollection.FindOne(c.Context(), bson.M{"_id": authUser.Id}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse("User not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error fetching user"))
	}

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}

	if req.Text == "" && req.Img == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Post must have text or image"))
	}

	img := req.Img
	if img != "" {
		uploadedURL, err := lib.UploadImage(c.Context(), img)
		if err != nil {
			log.Printf("Error uploading image: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error uploading image"))
		}
		img = uploadedURL
	}

	newPost := models.Post{
		Id:        primitive.NewObjectID(),
		User:      user.Id,
		Text:      req.Text,
		Img:       img,
		Likes:     []primitive.ObjectID{},
		Comments:  []models.Comment{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	postsCollection := lib.DB.Collection("posts")
	if _, err := postsCollection.InsertOne(c.Context(), newPost); err != nil {
		log.Printf("Error creating post: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to create post"))
	}

	return c.Status(fiber.StatusCreated).JSON(newPost)
}

// DeletePost deletes a post by ID if the authenticated user is its author,
// removing the hosted image first when one is set.
func DeletePost(c *fiber.Ctx) error {
	postID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid post ID format"))
	}

	user := c.Locals("user").(models.User)

	collection := lib.DB.Collection("posts")

	var post models.Post
	if err := collection.FindOne(c.Context(), bson.M{"_id": postID}).Decode(&post); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Post not found"))
	}

	if post.User != user.Id {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("You are not authorized to delete this post"))
	}

	// Best effort: a failed media delete is logged, not surfaced.
	if post.Img != "" {
		if err := lib.DestroyImage(c.Context(), post.Img); err != nil {
			log.Printf("Error deleting image from media host: %v", err)
		}
	}

	if _, err := collection.DeleteOne(c.Context(), bson.M{"_id": postID}); err != nil {
		log.Printf("Error deleting post: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to delete post"))
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Post deleted successfully"))
}

// CommentOnPost appends a comment to a post. Unlike likes, commenting does
// not notify the post author.
func CommentOnPost(c *fiber.Ctx) error {
	type CommentRequest struct {
		Text string `json:"text"`
	}

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}

	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Text field is required"))
	}

	postID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid post ID format"))
	}

	user := c.Locals("user").(models.User)

	comment := models.Comment{
		Id:        primitive.NewObjectID(),
		Text:      req.Text,
		User:      user.Id,
		CreatedAt: time.Now(),
	}

	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	collection := lib.DB.Collection("posts")
	var updatedPost models.Post
	err = collection.FindOneAndUpdate(c.Context(), bson.M{"_id": postID}, update, opts).Decode(&updatedPost)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Post not found"))
		}
		log.Printf("Error adding comment: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to add comment"))
	}

	return c.Status(fiber.StatusOK).JSON(updatedPost)
}

// LikeUnlikePost toggles the authenticated user's like on a post, mirrors the
// change into the user's likedPosts, and returns the resulting like set. A
// fresh like notifies the post author.
func LikeUnlikePost(c *fiber.Ctx) error {
	postID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid post ID format"))
	}

	user := c.Locals("user").(models.User)

	postsCollection := lib.DB.Collection("posts")
	usersCollection := lib.DB.Collection("users")

	var post models.Post
	if err := postsCollection.FindOne(c.Context(), bson.M{"_id": postID}).Decode(&post); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Post not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error fetching post"))
	}

	alreadyLiked := false
	for _, likeID := range post.Likes {
		if likeID == user.Id {
			alreadyLiked = true
			break
		}
	}

	var postUpdate, userUpdate bson.M
	if alreadyLiked {
		postUpdate = bson.M{
			"$pull": bson.M{"likes": user.Id},
			"$set":  bson.M{"updatedAt": time.Now()},
		}
		userUpdate = bson.M{"$pull": bson.M{"likedPosts": postID}}
	} else {
		postUpdate = bson.M{
			"$push": bson.M{"likes": user.Id},
			"$set":  bson.M{"updatedAt": time.Now()},
		}
		userUpdate = bson.M{"$push": bson.M{"likedPosts": postID}}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updatedPost models.Post
	err = postsCollection.FindOneAndUpdate(c.Context(), bson.M{"_id": postID}, postUpdate, opts).Decode(&updatedPost)
	if err != nil {
		log.Printf("Error updating post likes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to update post"))
	}

	// Second half of the denormalized pair. Not transactional with the post
	// update, matching the consistency envelope of the rest of the system.
	if _, err := usersCollection.UpdateOne(c.Context(), bson.M{"_id": user.Id}, userUpdate); err != nil {
		log.Printf("Error updating likedPosts for user %s: %v", user.Id.Hex(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to update liked posts"))
	}

	if !alreadyLiked {
		notification := models.Notification{
			Id:        primitive.NewObjectID(),
			From:      user.Id,
			To:        post.User,
			Type:      models.NotificationTypeLike,
			Read:      false,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		notificationsCollection := lib.DB.Collection("notifications")
		if _, err := notificationsCollection.InsertOne(c.Context(), notification); err != nil {
			// The notification is not critical, log and continue.
			log.Printf("Error creating notification: %v", err)
		}
	}

	likes := updatedPost.Likes
	if likes == nil {
		likes = []primitive.ObjectID{}
	}

	return c.Status(fiber.StatusOK).JSON(likes)
}

// GetAllPosts returns every post, newest first, with authors and comment
// authors populated.
func GetAllPosts(c *fiber.Ctx) error {
	collection := lib.DB.Collection("posts")

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := collection.Find(c.Context(), bson.M{}, opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error fetching posts"))
	}
	defer cursor.Close(c.Context())

	var posts []models.Post
	if err := cursor.All(c.Context(), &posts); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error decoding posts"))
	}

	populatedPosts, err := lib.PopulatePosts(c, posts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error populating posts"))
	}

	return c.Status(fiber.StatusOK).JSON(populatedPosts)
}

// GetLikedPosts returns the posts a user has liked, populated. Order is
// whatever the store returns.
func GetLikedPosts(c *fiber.Ctx) error {
	userID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid user ID format"))
	}

	var user models.User
	usersCollection := lib.DB.Collection("users")
	if err := usersCollection.FindOne(c.Context(), bson.M{"_id": userID}).Decode(&user); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("User not found"))
	}

	likedPosts := user.LikedPosts
	if likedPosts == nil {
		likedPosts = []primitive.ObjectID{}
	}

	postsCollection := lib.DB.Collection("posts")
	cursor, err := postsCollection.Find(c.Context(), bson.M{"_id": bson.M{"$in": likedPosts}})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error fetching posts"))
	}
	defer cursor.Close(c.Context())

	var posts []models.Post
	if err := cursor.All(c.Context(), &posts); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error decoding posts"))
	}

	populatedPosts, err := lib.PopulatePosts(c, posts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error populating posts"))
	}

	return c.Status(fiber.StatusOK).JSON(populatedPosts)
}

// GetFollowingPosts returns the feed of posts authored by users the
// authenticated user follows, newest first.
func GetFollowingPosts(c *fiber.Ctx) error {
	authUser := c.Locals("user").(models.User)

	var user models.User
	usersCollection := lib.DB.Collection("users")
	if err := usersCollection.FindOne(c.Context(), bson.M{"_id": authUser.Id}).Decode(&user); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("User not found"))
	}

	following := user.Following
	if following == nil {
		following = []primitive.ObjectID{}
	}

	postsCollection := lib.DB.Collection("posts")
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := postsCollection.Find(c.Context(), bson.M{"user": bson.M{"$in": following}}, opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error fetching posts"))
	}
	defer cursor.Close(c.Context())

	var posts []models.Post
	if err := cursor.All(c.Context(), &posts); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error decoding posts"))
	}

	populatedPosts, err := lib.PopulatePosts(c, posts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error populating posts"))
	}

	return c.Status(fiber.StatusOK).JSON(populatedPosts)
}

// GetUserPosts returns all posts by the given username, newest first.
func GetUserPosts(c *fiber.Ctx) error {
	username := c.Params("username")

	var user models.User
	usersCollection := lib.DB.Collection("users")
	if err := usersCollection.FindOne(c.Context(), bson.M{"username": username}).Decode(&user); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("User not found"))
	}

	postsCollection := lib.DB.Collection("posts")
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := postsCollection.Find(c.Context(), bson.M{"user": user.Id}, opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error fetching posts"))
	}
	defer cursor.Close(c.Context())

	var posts []models.Post
	if err := cursor.All(c.Context(), &posts); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error decoding posts"))
	}

	populatedPosts, err := lib.PopulatePosts(c, posts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Error populating posts"))
	}

	return c.Status(fiber.StatusOK).JSON(populatedPosts)
}
