package gates_test

import (
	"net/http/httptest"
	"testing"

	"github.com/rowphant/headless-wp/internal/app/system/gates"
	"github.com/rowphant/headless-wp/internal/testutil"
)

func TestRequireAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	res := gates.RequireAuth(rec, httptest.NewRequest("GET", "/", nil))
	if res.OK {
		t.Error("RequireAuth passed an anonymous request")
	}
	if rec.Code != 401 {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	user := testutil.RegularUser()
	req := testutil.WithUser(httptest.NewRequest("GET", "/", nil), user)
	rec = httptest.NewRecorder()
	res = gates.RequireAuth(rec, req)
	if !res.OK {
		t.Fatal("RequireAuth rejected a signed-in request")
	}
	if res.UserID.Hex() != user.ID {
		t.Errorf("UserID = %s, want %s", res.UserID.Hex(), user.ID)
	}
	if res.Role != "user" {
		t.Errorf("Role = %q", res.Role)
	}
}

func TestRequireAuth_MalformedSessionID(t *testing.T) {
	req := testutil.WithUser(httptest.NewRequest("GET", "/", nil), testutil.TestUser{ID: "nothex", Role: "user"})
	rec := httptest.NewRecorder()
	if res := gates.RequireAuth(rec, req); res.OK {
		t.Error("RequireAuth passed a session with an invalid user id")
	}
	if rec.Code != 401 {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireSiteAdmin(t *testing.T) {
	rec := httptest.NewRecorder()
	if res := gates.RequireSiteAdmin(rec, httptest.NewRequest("GET", "/", nil)); res.OK {
		t.Error("RequireSiteAdmin passed an anonymous request")
	}
	if rec.Code != 401 {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := testutil.WithUser(httptest.NewRequest("GET", "/", nil), testutil.RegularUser())
	if res := gates.RequireSiteAdmin(rec, req); res.OK {
		t.Error("RequireSiteAdmin passed an ordinary user")
	}
	if rec.Code != 403 {
		t.Errorf("status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = testutil.WithUser(httptest.NewRequest("GET", "/", nil), testutil.SiteAdminUser())
	if res := gates.RequireSiteAdmin(rec, req); !res.OK {
		t.Error("RequireSiteAdmin rejected a site admin")
	}
}
