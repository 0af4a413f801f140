package controllers_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"golang.org/x/crypto/bcrypt"

	"flock/src/controllers"
	"flock/src/lib"
	"flock/src/models"
)

func newUserTestApp(mt *mtest.T, user models.User) *fiber.App {
	lib.DB = mt.Client.Database(testDBName)

	injectUser := func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	}

	app := fiber.New()
	app.Get("/api/users/profile/:username", injectUser, controllers.GetUserProfile)
	app.Get("/api/users/suggested", injectUser, controllers.GetSuggestedUsers)
	app.Post("/api/users/follow/:id", injectUser, controllers.FollowUnfollowUser)
	app.Post("/api/users/update", injectUser, controllers.UpdateUser)
	return app
}

// userWithPassword mirrors a stored user document carrying a bcrypt hash.
func userWithPassword(user models.User, hash string) bson.D {
	return bson.D{
		{Key: "_id", Value: user.Id},
		{Key: "username", Value: user.Username},
		{Key: "fullName", Value: user.FullName},
		{Key: "email", Value: user.Email},
		{Key: "password", Value: hash},
	}
}

func TestGetUserProfile(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unknown username", func(mt *mtest.T) {
		app := newUserTestApp(mt, testUser())

		mt.AddMockResponses(emptyUserLookup())

		resp, err := app.Test(jsonRequest(fiber.MethodGet, "/api/users/profile/ghost", ""), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	mt.Run("strips password", func(mt *mtest.T) {
		app := newUserTestApp(mt, testUser())

		profile := testUser()
		mt.AddMockResponses(userFoundResponse(profile))

		resp, err := app.Test(jsonRequest(fiber.MethodGet, "/api/users/profile/"+profile.Username, ""), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out map[string]any
		require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
		require.Equal(t, profile.Username, out["username"])
		require.NotContains(t, out, "password")
	})
}

func TestFollowUnfollowUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("self-follow is rejected", func(mt *mtest.T) {
		user := testUser()
		app := newUserTestApp(mt, user)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/users/follow/"+user.Id.Hex(), ""), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var out map[string]string
		require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
		require.Equal(t, "You can't follow/unfollow yourself", out["error"])
	})

	mt.Run("follow syncs both sides and notifies", func(mt *mtest.T) {
		user := testUser()
		app := newUserTestApp(mt, user)

		target := testUser()
		mt.AddMockResponses(
			userFoundResponse(target),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/users/follow/"+target.Id.Hex(), ""), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out map[string]string
		require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
		require.Equal(t, "User followed successfully", out["message"])
	})

	mt.Run("unfollow when already following", func(mt *mtest.T) {
		user := testUser()
		target := testUser()
		user.Following = []primitive.ObjectID{target.Id}
		app := newUserTestApp(mt, user)

		mt.AddMockResponses(
			userFoundResponse(target),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/users/follow/"+target.Id.Hex(), ""), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out map[string]string
		require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
		require.Equal(t, "User unfollowed successfully", out["message"])
	})

	mt.Run("unknown target", func(mt *mtest.T) {
		app := newUserTestApp(mt, testUser())

		mt.AddMockResponses(emptyUserLookup())

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/users/follow/"+primitive.NewObjectID().Hex(), ""), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestGetSuggestedUsers(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns sampled users without passwords", func(mt *mtest.T) {
		user := testUser()
		followed := testUser()
		user.Following = []primitive.ObjectID{followed.Id}
		app := newUserTestApp(mt, user)

		first := testUser()
		second := testUser()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDBName+".users", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: first.Id},
				{Key: "username", Value: first.Username},
				{Key: "fullName", Value: first.FullName},
			},
			bson.D{
				{Key: "_id", Value: second.Id},
				{Key: "username", Value: second.Username},
				{Key: "fullName", Value: second.FullName},
			}))

		resp, err := app.Test(jsonRequest(fiber.MethodGet, "/api/users/suggested", ""), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out []map[string]any
		require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
		require.Len(t, out, 2)
		require.LessOrEqual(t, len(out), 4)
		for _, suggested := range out {
			require.NotContains(t, suggested, "password")
			require.NotEqual(t, user.Id.Hex(), suggested["id"])
			require.NotEqual(t, followed.Id.Hex(), suggested["id"])
		}
	})

	mt.Run("no candidates returns empty array", func(mt *mtest.T) {
		app := newUserTestApp(mt, testUser())

		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDBName+".users", mtest.FirstBatch))

		resp, err := app.Test(jsonRequest(fiber.MethodGet, "/api/users/suggested", ""), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.Equal(t, "[]", strings.TrimSpace(string(readBody(t, resp))))
	})
}

func TestUpdateUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	currentHash := func(t *testing.T, password string) string {
		t.Helper()
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		require.NoError(t, err)
		return string(hash)
	}

	mt.Run("current password without new password is rejected", func(mt *mtest.T) {
		user := testUser()
		app := newUserTestApp(mt, user)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDBName+".users", mtest.FirstBatch,
			userWithPassword(user, currentHash(mt.T, "correct-horse"))))

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/users/update",
			`{"currentPassword":"correct-horse"}`), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var out map[string]string
		require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
		require.Equal(t, "Please provide both current password and new password", out["error"])
	})

	mt.Run("wrong current password is rejected", func(mt *mtest.T) {
		user := testUser()
		app := newUserTestApp(mt, user)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDBName+".users", mtest.FirstBatch,
			userWithPassword(user, currentHash(mt.T, "correct-horse"))))

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/users/update",
			`{"currentPassword":"wrong","newPassword":"secret123"}`), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var out map[string]string
		require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
		require.Equal(t, "Current password is incorrect", out["error"])
	})

	mt.Run("short new password is rejected", func(mt *mtest.T) {
		user := testUser()
		app := newUserTestApp(mt, user)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDBName+".users", mtest.FirstBatch,
			userWithPassword(user, currentHash(mt.T, "correct-horse"))))

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/users/update",
			`{"currentPassword":"correct-horse","newPassword":"123"}`), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var out map[string]string
		require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
		require.Equal(t, "Password must be at least 6 characters long", out["error"])
	})

	mt.Run("updates profile fields and strips password", func(mt *mtest.T) {
		user := testUser()
		app := newUserTestApp(mt, user)

		updated := bson.D{
			{Key: "_id", Value: user.Id},
			{Key: "username", Value: user.Username},
			{Key: "fullName", Value: user.FullName},
			{Key: "bio", Value: "gopher"},
			{Key: "password", Value: "stored-hash"},
		}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, testDBName+".users", mtest.FirstBatch,
				userWithPassword(user, "stored-hash")),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: updated}),
		)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/users/update", `{"bio":"gopher"}`), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out map[string]any
		require.NoError(t, json.Unmarshal(readBody(t, resp), &out))
		require.Equal(t, "gopher", out["bio"])
		require.Equal(t, user.Username, out["username"])
		require.NotContains(t, out, "password")
	})
}
