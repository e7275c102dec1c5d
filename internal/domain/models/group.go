// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group statuses. Only published groups are visible to the membership
// workflows; draft and private groups resolve as not found.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
	StatusPrivate = "private"
)

// Group is a user-group document with its four denormalized role-sets.
//
// NOTE:
//   - Admins/Members/Requests hold user ids.
//   - Invitations holds email addresses only, never user ids. Invitees are
//     normalized to email even when invited by user id, so matching works
//     the same for registered and not-yet-registered invitees.
type Group struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Title    string             `bson:"title" json:"title"`
	TitleCI  string             `bson:"title_ci" json:"-"`
	AuthorID primitive.ObjectID `bson:"author_id" json:"author_id"`
	Status   string             `bson:"status" json:"status"`

	Admins      []primitive.ObjectID `bson:"admins" json:"admins"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	Requests    []primitive.ObjectID `bson:"requests" json:"requests"`
	Invitations []string             `bson:"invitations" json:"invitations"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user appears in the group's admin set.
func (g Group) IsAdmin(userID primitive.ObjectID) bool {
	return containsID(g.Admins, userID)
}

// IsMember reports whether the user appears in the group's member set.
func (g Group) IsMember(userID primitive.ObjectID) bool {
	return containsID(g.Members, userID)
}

// HasRequest reports whether the user has a pending join request.
func (g Group) HasRequest(userID primitive.ObjectID) bool {
	return containsID(g.Requests, userID)
}

// HasInvitation reports whether the canonical email is invited.
func (g Group) HasInvitation(email string) bool {
	for _, e := range g.Invitations {
		if e == email {
			return true
		}
	}
	return false
}

func idsToHex(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
