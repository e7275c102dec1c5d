// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rowphant/headless-wp/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	// ErrNotFound covers both a missing document and an unpublished one.
	// Draft and private groups are invisible to the membership workflows.
	ErrNotFound = errors.New("group not found")

	ErrDuplicateTitle = errors.New("a group with this title already exists")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

// GetByID returns the group only when it is published.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"_id": id, "status": models.StatusPublish}).Decode(&g)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, ErrNotFound
		}
		return models.Group{}, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.TitleCI = text.Fold(g.Title)
	if g.Status == "" {
		g.Status = models.StatusPublish
	}
	if g.Admins == nil {
		g.Admins = []primitive.ObjectID{}
	}
	if g.Members == nil {
		g.Members = []primitive.ObjectID{}
	}
	if g.Requests == nil {
		g.Requests = []primitive.ObjectID{}
	}
	if g.Invitations == nil {
		g.Invitations = []string{}
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateTitle
		}
		return models.Group{}, fmt.Errorf("create group: %w", err)
	}
	return g, nil
}

// Delete removes a group by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("delete group: %w", err)
	}
	return res.DeletedCount, nil
}

// AddUser appends a user id to one of the group's id role-sets.
// No-op when already present. Invitee is email-typed; use AddInvitation.
func (s *Store) AddUser(ctx context.Context, id primitive.ObjectID, role models.Role, userID primitive.ObjectID) error {
	if role == models.RoleInvitee {
		return errors.New("invitee role holds emails, not user ids")
	}
	return s.update(ctx, id, bson.M{"$addToSet": bson.M{role.GroupField(): userID}})
}

// RemoveUser pulls a user id from one of the group's id role-sets.
func (s *Store) RemoveUser(ctx context.Context, id primitive.ObjectID, role models.Role, userID primitive.ObjectID) error {
	if role == models.RoleInvitee {
		return errors.New("invitee role holds emails, not user ids")
	}
	return s.update(ctx, id, bson.M{"$pull": bson.M{role.GroupField(): userID}})
}

// AddInvitation appends a canonical email to the invitation set.
func (s *Store) AddInvitation(ctx context.Context, id primitive.ObjectID, email string) error {
	return s.update(ctx, id, bson.M{"$addToSet": bson.M{"invitations": email}})
}

// RemoveInvitation pulls a canonical email from the invitation set.
func (s *Store) RemoveInvitation(ctx context.Context, id primitive.ObjectID, email string) error {
	return s.update(ctx, id, bson.M{"$pull": bson.M{"invitations": email}})
}

// SetRoleSet overwrites one id role-set wholesale. The bulk role-set
// endpoints go through this after the sync engine has computed the diff.
func (s *Store) SetRoleSet(ctx context.Context, id primitive.ObjectID, role models.Role, set []primitive.ObjectID) error {
	if role == models.RoleInvitee {
		return errors.New("invitee role holds emails, not user ids")
	}
	if set == nil {
		set = []primitive.ObjectID{}
	}
	return s.update(ctx, id, bson.M{"$set": bson.M{role.GroupField(): set}})
}

// SetInvitations overwrites the invitation email set wholesale.
func (s *Store) SetInvitations(ctx context.Context, id primitive.ObjectID, emails []string) error {
	if emails == nil {
		emails = []string{}
	}
	return s.update(ctx, id, bson.M{"$set": bson.M{"invitations": emails}})
}

// FindInvitedByEmail lists published groups holding a pending invitation
// for the email. Registration uses this to seed the new account's
// user-side invitation mirror.
func (s *Store) FindInvitedByEmail(ctx context.Context, email string) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{"invitations": email, "status": models.StatusPublish})
	if err != nil {
		return nil, fmt.Errorf("find invited groups: %w", err)
	}
	defer cur.Close(ctx)
	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode invited groups: %w", err)
	}
	return out, nil
}

func (s *Store) update(ctx context.Context, id primitive.ObjectID, mutation bson.M) error {
	set, ok := mutation["$set"].(bson.M)
	if !ok {
		set = bson.M{}
		mutation["$set"] = set
	}
	set["updated_at"] = time.Now().UTC()
	// Role-set mutations only apply to published groups; a draft or
	// private group reads as ErrNotFound, same as GetByID.
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "status": models.StatusPublish}, mutation)
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
