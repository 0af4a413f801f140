package controllers

import (
	"log"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"flock/src/lib"
	"flock/src/models"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// dummyPasswordHash is a valid bcrypt hash of a throwaway value. Login
// failures on unknown usernames verify against it so both failure paths pay
// the full bcrypt cost.
var dummyPasswordHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Signup registers a new user, validates input, checks for duplicates, hashes
// the password and sets the auth cookie.
func Signup(c *fiber.Ctx) error {
	type SignupRequest struct {
		Username string `json:"username"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}

	if !emailRegex.MatchString(req.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid email format"))
	}

	collection := lib.DB.Collection("users")

	var existing models.User
	err := collection.FindOne(c.Context(), bson.M{"username": req.Username}).Decode(&existing)
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Username is already taken"))
	} else if err != mongo.ErrNoDocuments {
		log.Printf("Error checking username: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Internal server error"))
	}

	err = collection.FindOne(c.Context(), bson.M{"email": req.Email}).Decode(&existing)
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Email is already taken"))
	} else if err != mongo.ErrNoDocuments {
		log.Printf("Error checking email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Internal server error"))
	}

	if len(req.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Password must be at least 6 characters long"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Internal server error"))
	}

	newUser := models.User{
		Id:         primitive.NewObjectID(),
		Username:   req.Username,
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   string(hashedPassword),
		Followers:  []primitive.ObjectID{},
		Following:  []primitive.ObjectID{},
		LikedPosts: []primitive.ObjectID{},
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if _, err := collection.InsertOne(c.Context(), newUser); err != nil {
		log.Printf("Error creating user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to create user"))
	}

	token, err := lib.GenerateJWT(newUser.Id)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Internal server error"))
	}
	lib.SetAuthCookie(c, token)

	newUser.Password = ""

	return c.Status(fiber.StatusCreated).JSON(newUser)
}

// Login authenticates a user by username and password and sets the auth
// cookie. The response does not reveal which of the two was wrong.
func Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}

	collection := lib.DB.Collection("users")

	var user models.User
	err := collection.FindOne(c.Context(), bson.M{"username": req.Username}).Decode(&user)
	if err != nil {
		bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(req.Password))
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid username or password"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid username or password"))
	}

	token, err := lib.GenerateJWT(user.Id)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Internal server error"))
	}
	lib.SetAuthCookie(c, token)

	user.Password = ""

	return c.Status(fiber.StatusOK).JSON(user)
}

// Logout clears the auth cookie.
func Logout(c *fiber.Ctx) error {
	lib.ClearAuthCookie(c)
	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Logged out successfully"))
}

// GetMe returns the authenticated user, password stripped by the middleware.
func GetMe(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)
	return c.Status(fiber.StatusOK).JSON(user)
}
