package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given display name and email.
func (f *Fixtures) CreateUser(ctx context.Context, displayName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:               primitive.NewObjectID(),
		Email:            text.Fold(email),
		DisplayName:      displayName,
		GroupAdmin:       []primitive.ObjectID{},
		GroupMember:      []primitive.ObjectID{},
		GroupRequests:    []primitive.ObjectID{},
		GroupInvitations: []primitive.ObjectID{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateSiteAdmin creates a test user flagged as a site administrator.
func (f *Fixtures) CreateSiteAdmin(ctx context.Context, displayName, email string) models.User {
	f.t.Helper()

	user := f.CreateUser(ctx, displayName, email)
	user.SiteAdmin = true
	_, err := f.db.Collection("users").UpdateByID(ctx, user.ID, map[string]any{"$set": map[string]any{"site_admin": true}})
	if err != nil {
		f.t.Fatalf("failed to flag test site admin: %v", err)
	}

	return user
}

// CreateGroup creates a published test group authored by the given user.
// The author is seeded into the admin set, matching what group creation
// does in production.
func (f *Fixtures) CreateGroup(ctx context.Context, title string, authorID primitive.ObjectID) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:          primitive.NewObjectID(),
		Title:       title,
		TitleCI:     text.Fold(title),
		AuthorID:    authorID,
		Status:      models.StatusPublish,
		Admins:      []primitive.ObjectID{authorID},
		Members:     []primitive.ObjectID{},
		Requests:    []primitive.ObjectID{},
		Invitations: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("groups").InsertOne(ctx, group)
	if err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}

	f.mirrorUserRole(ctx, authorID, "group_admin", group.ID)

	return group
}

// CreateDraftGroup creates a test group with draft status. Draft groups
// resolve as not found in the membership workflows.
func (f *Fixtures) CreateDraftGroup(ctx context.Context, title string, authorID primitive.ObjectID) models.Group {
	f.t.Helper()

	group := f.CreateGroup(ctx, title, authorID)
	group.Status = models.StatusDraft
	_, err := f.db.Collection("groups").UpdateByID(ctx, group.ID, map[string]any{"$set": map[string]any{"status": models.StatusDraft}})
	if err != nil {
		f.t.Fatalf("failed to demote test group to draft: %v", err)
	}

	return group
}

// AddMember seeds a user into the group's member set and mirrors the
// membership on the user document.
func (f *Fixtures) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) {
	f.t.Helper()
	f.addGroupRole(ctx, groupID, "members", userID)
	f.mirrorUserRole(ctx, userID, "group_member", groupID)
}

// AddAdmin seeds a user into the group's admin set and mirrors it on
// the user document.
func (f *Fixtures) AddAdmin(ctx context.Context, groupID, userID primitive.ObjectID) {
	f.t.Helper()
	f.addGroupRole(ctx, groupID, "admins", userID)
	f.mirrorUserRole(ctx, userID, "group_admin", groupID)
}

// AddRequest seeds a pending join request on both sides.
func (f *Fixtures) AddRequest(ctx context.Context, groupID, userID primitive.ObjectID) {
	f.t.Helper()
	f.addGroupRole(ctx, groupID, "requests", userID)
	f.mirrorUserRole(ctx, userID, "group_requests", groupID)
}

// AddInvitation seeds an email invitation on the group. When userID is
// non-zero the invitation is also mirrored on that user document.
func (f *Fixtures) AddInvitation(ctx context.Context, groupID primitive.ObjectID, email string, userID primitive.ObjectID) {
	f.t.Helper()

	_, err := f.db.Collection("groups").UpdateByID(ctx, groupID,
		map[string]any{"$addToSet": map[string]any{"invitations": text.Fold(email)}})
	if err != nil {
		f.t.Fatalf("failed to seed test invitation: %v", err)
	}
	if !userID.IsZero() {
		f.mirrorUserRole(ctx, userID, "group_invitations", groupID)
	}
}

func (f *Fixtures) addGroupRole(ctx context.Context, groupID primitive.ObjectID, field string, userID primitive.ObjectID) {
	f.t.Helper()

	_, err := f.db.Collection("groups").UpdateByID(ctx, groupID,
		map[string]any{"$addToSet": map[string]any{field: userID}})
	if err != nil {
		f.t.Fatalf("failed to seed group %s: %v", field, err)
	}
}

func (f *Fixtures) mirrorUserRole(ctx context.Context, userID primitive.ObjectID, field string, groupID primitive.ObjectID) {
	f.t.Helper()

	_, err := f.db.Collection("users").UpdateByID(ctx, userID,
		map[string]any{"$addToSet": map[string]any{field: groupID}})
	if err != nil {
		f.t.Fatalf("failed to seed user %s: %v", field, err)
	}
}
