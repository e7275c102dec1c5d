// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rowphant/headless-wp/internal/app/system/normalize"
	"github.com/rowphant/headless-wp/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("an account with this email already exists")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByEmail looks up by canonical email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	if u.GroupAdmin == nil {
		u.GroupAdmin = []primitive.ObjectID{}
	}
	if u.GroupMember == nil {
		u.GroupMember = []primitive.ObjectID{}
	}
	if u.GroupRequests == nil {
		u.GroupRequests = []primitive.ObjectID{}
	}
	if u.GroupInvitations == nil {
		u.GroupInvitations = []primitive.ObjectID{}
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// AddGroup appends a group id to one of the user's mirror sets.
// The role-set ops do not verify the group exists; the sync engine has
// already resolved both sides before calling.
func (s *Store) AddGroup(ctx context.Context, userID primitive.ObjectID, role models.Role, groupID primitive.ObjectID) error {
	return s.update(ctx, userID, bson.M{"$addToSet": bson.M{role.UserField(): groupID}})
}

// RemoveGroup pulls a group id from one of the user's mirror sets.
func (s *Store) RemoveGroup(ctx context.Context, userID primitive.ObjectID, role models.Role, groupID primitive.ObjectID) error {
	return s.update(ctx, userID, bson.M{"$pull": bson.M{role.UserField(): groupID}})
}

// SetGroupSet overwrites one mirror set wholesale.
func (s *Store) SetGroupSet(ctx context.Context, userID primitive.ObjectID, role models.Role, set []primitive.ObjectID) error {
	if set == nil {
		set = []primitive.ObjectID{}
	}
	return s.update(ctx, userID, bson.M{"$set": bson.M{role.UserField(): set}})
}

func (s *Store) update(ctx context.Context, id primitive.ObjectID, mutation bson.M) error {
	set, ok := mutation["$set"].(bson.M)
	if !ok {
		set = bson.M{}
		mutation["$set"] = set
	}
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, mutation)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
