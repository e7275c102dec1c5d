package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/rowphant/headless-wp/internal/app/store/users"
	"github.com/rowphant/headless-wp/internal/app/system/indexes"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"github.com/rowphant/headless-wp/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setup(t *testing.T) *userstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll() = %v", err)
	}
	return userstore.New(db)
}

func TestCreate_CanonicalizesEmail(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{
		Email:       "  New.User@Example.COM ",
		DisplayName: "New User",
	})
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	if u.Email != "new.user@example.com" {
		t.Errorf("Email = %q", u.Email)
	}
	if u.GroupMember == nil || u.GroupInvitations == nil {
		t.Error("Create() left a mirror set nil")
	}

	got, err := store.GetByEmail(ctx, "NEW.USER@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByEmail() id = %v, want %v", got.ID, u.ID)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{Email: "dup@example.com"}); err != nil {
		t.Fatalf("Create(first) = %v", err)
	}
	_, err := store.Create(ctx, models.User{Email: "DUP@example.com"})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Fatalf("Create(duplicate) = %v, want ErrDuplicateEmail", err)
	}
}

func TestGetByID_Missing(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, userstore.ErrNotFound) {
		t.Fatalf("GetByID(missing) = %v, want ErrNotFound", err)
	}
}

func TestAddRemoveGroup(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Email: "user@example.com"})
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	gid := primitive.NewObjectID()

	if err := store.AddGroup(ctx, u.ID, models.RoleMember, gid); err != nil {
		t.Fatalf("AddGroup() = %v", err)
	}
	got, _ := store.GetByID(ctx, u.ID)
	if !got.MemberOf(gid) {
		t.Error("group not mirrored onto user")
	}

	if err := store.RemoveGroup(ctx, u.ID, models.RoleMember, gid); err != nil {
		t.Fatalf("RemoveGroup() = %v", err)
	}
	got, _ = store.GetByID(ctx, u.ID)
	if got.MemberOf(gid) {
		t.Error("group not removed from user mirror")
	}

	if err := store.AddGroup(ctx, primitive.NewObjectID(), models.RoleMember, gid); !errors.Is(err, userstore.ErrNotFound) {
		t.Fatalf("AddGroup(missing user) = %v, want ErrNotFound", err)
	}
}

func TestSetGroupSet(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Email: "user@example.com"})
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}

	want := []primitive.ObjectID{primitive.NewObjectID()}
	if err := store.SetGroupSet(ctx, u.ID, models.RoleRequester, want); err != nil {
		t.Fatalf("SetGroupSet() = %v", err)
	}
	got, _ := store.GetByID(ctx, u.ID)
	if len(got.GroupRequests) != 1 || got.GroupRequests[0] != want[0] {
		t.Errorf("GroupRequests = %v, want %v", got.GroupRequests, want)
	}

	if err := store.SetGroupSet(ctx, u.ID, models.RoleRequester, nil); err != nil {
		t.Fatalf("SetGroupSet(nil) = %v", err)
	}
	got, _ = store.GetByID(ctx, u.ID)
	if len(got.GroupRequests) != 0 {
		t.Errorf("GroupRequests = %v, want empty", got.GroupRequests)
	}
}
