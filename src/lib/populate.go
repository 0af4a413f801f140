package lib

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flock/src/models"
)

var userDtoProjection = bson.M{
	"username":   1,
	"fullName":   1,
	"profileImg": 1,
}

// PopulatePosts resolves post authors and comment authors into their public
// profile fields, the equivalent of populate({select: "-password"}). Posts
// whose author no longer resolves keep a zero-value UserDto.
func PopulatePosts(c *fiber.Ctx, posts []models.Post) ([]models.PostDto, error) {
	populated := make([]models.PostDto, 0, len(posts))
	if len(posts) == 0 {
		return populated, nil
	}

	seen := make(map[primitive.ObjectID]struct{})
	ids := make([]primitive.ObjectID, 0, len(posts))
	for _, post := range posts {
		if _, ok := seen[post.User]; !ok {
			seen[post.User] = struct{}{}
			ids = append(ids, post.User)
		}
		for _, comment := range post.Comments {
			if _, ok := seen[comment.User]; !ok {
				seen[comment.User] = struct{}{}
				ids = append(ids, comment.User)
			}
		}
	}

	users, err := FindUserDtos(c, ids)
	if err != nil {
		return nil, err
	}

	for _, post := range posts {
		dto := models.PostDto{
			ID:        post.Id,
			User:      users[post.User],
			Text:      post.Text,
			Img:       post.Img,
			Likes:     post.Likes,
			Comments:  make([]models.CommentDto, 0, len(post.Comments)),
			CreatedAt: post.CreatedAt,
			UpdatedAt: post.UpdatedAt,
		}
		if dto.Likes == nil {
			dto.Likes = []primitive.ObjectID{}
		}
		for _, comment := range post.Comments {
			dto.Comments = append(dto.Comments, models.CommentDto{
				ID:        comment.Id,
				Text:      comment.Text,
				User:      users[comment.User],
				CreatedAt: comment.CreatedAt,
			})
		}
		populated = append(populated, dto)
	}

	return populated, nil
}

// FindUserDtos fetches the public profiles for the given user IDs in one query.
func FindUserDtos(c *fiber.Ctx, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserDto, error) {
	users := make(map[primitive.ObjectID]models.UserDto, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	collection := DB.Collection("users")
	filter := bson.M{"_id": bson.M{"$in": ids}}
	opts := options.Find().SetProjection(userDtoProjection)

	cursor, err := collection.Find(c.Context(), filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(c.Context())

	var dtos []models.UserDto
	if err := cursor.All(c.Context(), &dtos); err != nil {
		return nil, err
	}

	for _, dto := range dtos {
		users[dto.ID] = dto
	}

	return users, nil
}
