// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account document. The Group* slices mirror the group-side
// role-sets so that per-user lookups never scan the groups collection.
// GroupInvitations holds group ids (the user-side view of an email
// invitation), while the matching group stores the invitee's email.
type User struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Email        string             `bson:"email" json:"email"`
	DisplayName  string             `bson:"display_name" json:"display_name"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	SiteAdmin    bool               `bson:"site_admin,omitempty" json:"-"`

	GroupAdmin       []primitive.ObjectID `bson:"group_admin" json:"group_admin"`
	GroupMember      []primitive.ObjectID `bson:"group_member" json:"group_member"`
	GroupRequests    []primitive.ObjectID `bson:"group_requests" json:"group_requests"`
	GroupInvitations []primitive.ObjectID `bson:"group_invitations" json:"group_invitations"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// MemberOf reports whether the user's own index lists the group.
func (u User) MemberOf(groupID primitive.ObjectID) bool {
	return containsID(u.GroupMember, groupID)
}

// AdminOf reports whether the user's own index lists the group.
func (u User) AdminOf(groupID primitive.ObjectID) bool {
	return containsID(u.GroupAdmin, groupID)
}
