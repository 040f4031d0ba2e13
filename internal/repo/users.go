package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

func (s *mongoStore) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	if _, err := s.c(colUsers).InsertOne(ctx, u); err != nil {
		return wrapWrite(err, "username taken")
	}
	return nil
}

func (s *mongoStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c(colUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, wrapFind(err, "user")
	}
	return &u, nil
}

func (s *mongoStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c(colUsers).FindOne(ctx, bson.M{"username": username}).Decode(&u); err != nil {
		return nil, wrapFind(err, "user")
	}
	return &u, nil
}

func (s *mongoStore) ListUsers(ctx context.Context, f UserFilter) ([]models.User, error) {
	filter := bson.M{}
	if !f.IncludeInactive {
		filter["active"] = true
	}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"first_name": regexSearch(f.Search)},
			bson.M{"last_name": regexSearch(f.Search)},
			bson.M{"username": regexSearch(f.Search)},
		}
	}
	var out []models.User
	err := findAll(ctx, s.c(colUsers), filter, bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}}, &out)
	return out, err
}

func (s *mongoStore) UpdateUser(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now()
	return replaceByID(ctx, s.c(colUsers), bson.M{"_id": u.ID}, u, "user", "username taken")
}

func (s *mongoStore) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.c(colUsers), bson.M{"_id": id}, "user")
}

func (s *mongoStore) AddPushToken(ctx context.Context, userID primitive.ObjectID, token string) error {
	res, err := s.c(colUsers).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"push_tokens": token}, "$set": bson.M{"updated_at": time.Now()}},
	)
	if err != nil {
		return wrapWrite(err, "duplicate token")
	}
	if res.MatchedCount == 0 {
		return wrapFind(mongo.ErrNoDocuments, "user")
	}
	return nil
}

// UserRefs resolves a set of user ids to their public reference views.
func (s *mongoStore) UserRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	out := map[primitive.ObjectID]models.UserRef{}
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := findAll(ctx, s.c(colUsers), bson.M{"_id": bson.M{"$in": ids}}, nil, &users); err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = users[i].Ref()
	}
	return out, nil
}
