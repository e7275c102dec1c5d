package members_test

import (
	"net/http/httptest"
	"testing"

	"github.com/rowphant/headless-wp/internal/app/features/members"
	"github.com/rowphant/headless-wp/internal/app/system/grouplock"
	"github.com/rowphant/headless-wp/internal/app/system/membersync"
	"github.com/rowphant/headless-wp/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*members.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := members.NewHandler(db, membersync.New(db, logger), grouplock.New(), logger)
	return h, testutil.NewFixtures(t, db)
}

func TestHandleAdd_DirectAdd(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	target := fx.CreateUser(ctx, "Target", "target@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-members/add", map[string]any{
		"group_id": group.ID.Hex(),
		"user_id":  target.ID.Hex(),
	})
	req = testutil.WithUser(req, testutil.UserFor(author))
	rec := httptest.NewRecorder()

	h.HandleAdd(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	g, _ := h.Groups.GetByID(ctx, group.ID)
	if !g.IsMember(target.ID) {
		t.Error("target not in member set")
	}
	u, _ := h.Users.GetByID(ctx, target.ID)
	if !u.MemberOf(group.ID) {
		t.Error("member mirror missing the group")
	}
}

func TestHandleAdd_ConsumesInvitationAndRequest(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	target := fx.CreateUser(ctx, "Target", "target@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)
	fx.AddInvitation(ctx, group.ID, "target@example.com", target.ID)
	fx.AddRequest(ctx, group.ID, target.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-members/add", map[string]any{
		"group_id": group.ID.Hex(),
		"user_id":  target.ID.Hex(),
	})
	req = testutil.WithUser(req, testutil.UserFor(author))
	rec := httptest.NewRecorder()

	h.HandleAdd(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	g, _ := h.Groups.GetByID(ctx, group.ID)
	if !g.IsMember(target.ID) {
		t.Error("target not in member set")
	}
	if g.HasInvitation("target@example.com") {
		t.Error("invitation survived the direct add")
	}
	if g.HasRequest(target.ID) {
		t.Error("join request survived the direct add")
	}

	u, _ := h.Users.GetByID(ctx, target.ID)
	if len(u.GroupInvitations) != 0 || len(u.GroupRequests) != 0 {
		t.Errorf("workflow mirrors not consumed: invitations=%v requests=%v", u.GroupInvitations, u.GroupRequests)
	}
}

func TestHandleAdd_UnknownUser(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-members/add", map[string]any{
		"group_id": group.ID.Hex(),
		"user_id":  primitive.NewObjectID().Hex(),
	})
	req = testutil.WithUser(req, testutil.UserFor(author))
	rec := httptest.NewRecorder()

	h.HandleAdd(rec, req)

	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404; body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleAdd_AlreadyMember(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	target := fx.CreateUser(ctx, "Target", "target@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)
	fx.AddMember(ctx, group.ID, target.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-members/add", map[string]any{
		"group_id": group.ID.Hex(),
		"user_id":  target.ID.Hex(),
	})
	req = testutil.WithUser(req, testutil.UserFor(author))
	rec := httptest.NewRecorder()

	h.HandleAdd(rec, req)

	if rec.Code != 409 {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestHandleAdd_NotManager(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	target := fx.CreateUser(ctx, "Target", "target@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-members/add", map[string]any{
		"group_id": group.ID.Hex(),
		"user_id":  target.ID.Hex(),
	})
	req = testutil.WithUser(req, testutil.UserFor(target))
	rec := httptest.NewRecorder()

	h.HandleAdd(rec, req)

	if rec.Code != 403 {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestHandleRemove_SelfLeave(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	member := fx.CreateUser(ctx, "Member", "member@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)
	fx.AddMember(ctx, group.ID, member.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-members/remove", map[string]any{
		"group_id": group.ID.Hex(),
		"user_id":  member.ID.Hex(),
	})
	req = testutil.WithUser(req, testutil.UserFor(member))
	rec := httptest.NewRecorder()

	h.HandleRemove(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	g, _ := h.Groups.GetByID(ctx, group.ID)
	if g.IsMember(member.ID) {
		t.Error("member still in group after leaving")
	}
	u, _ := h.Users.GetByID(ctx, member.ID)
	if u.MemberOf(group.ID) {
		t.Error("member mirror still lists the group")
	}
}

func TestHandleRemove_ManagerRemovesClearsRequest(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	member := fx.CreateUser(ctx, "Member", "member@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)
	fx.AddMember(ctx, group.ID, member.ID)
	fx.AddRequest(ctx, group.ID, member.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-members/remove", map[string]any{
		"group_id": group.ID.Hex(),
		"user_id":  member.ID.Hex(),
	})
	req = testutil.WithUser(req, testutil.UserFor(author))
	rec := httptest.NewRecorder()

	h.HandleRemove(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	g, _ := h.Groups.GetByID(ctx, group.ID)
	if g.IsMember(member.ID) || g.HasRequest(member.ID) {
		t.Errorf("members=%v requests=%v after removal", g.Members, g.Requests)
	}
}

func TestHandleRemove_StrangerForbidden(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	member := fx.CreateUser(ctx, "Member", "member@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)
	fx.AddMember(ctx, group.ID, member.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-members/remove", map[string]any{
		"group_id": group.ID.Hex(),
		"user_id":  member.ID.Hex(),
	})
	req = testutil.WithUser(req, testutil.RegularUser())
	rec := httptest.NewRecorder()

	h.HandleRemove(rec, req)

	if rec.Code != 403 {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestHandleRemove_NotAMember(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	outsider := fx.CreateUser(ctx, "Outsider", "outsider@example.com")
	group := fx.CreateGroup(ctx, "Chess Club", author.ID)

	req := testutil.NewJSONRequest(t, "POST", "/group-members/remove", map[string]any{
		"group_id": group.ID.Hex(),
		"user_id":  outsider.ID.Hex(),
	})
	req = testutil.WithUser(req, testutil.UserFor(outsider))
	rec := httptest.NewRecorder()

	h.HandleRemove(rec, req)

	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
