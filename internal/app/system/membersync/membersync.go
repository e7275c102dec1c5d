// Package membersync keeps the two sides of every group relationship in
// step. Each role lives as an array on the group document and as a
// mirror array on the user document; every mutation writes both sides.
//
// Single-user operations (add one member, remove one admin) run as a
// compensated step sequence: if the mirror write fails the primary write
// is undone, and only when the undo itself fails is the operation
// reported as partially applied. Bulk role-set overwrites write the
// authoritative side first and then fan out per-user mirror writes
// best-effort; individual mirror failures are collected, never rolled
// back.
//
// Callers that read-modify-write a single group hold that group's lock
// (grouplock) for the whole cycle. The engine itself does not lock.
package membersync

import (
	"context"
	"errors"
	"fmt"

	groupstore "github.com/rowphant/headless-wp/internal/app/store/groups"
	userstore "github.com/rowphant/headless-wp/internal/app/store/users"
	"github.com/rowphant/headless-wp/internal/app/system/normalize"
	"github.com/rowphant/headless-wp/internal/app/system/txn"
	"github.com/rowphant/headless-wp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Result reports which mirror writes landed. Values are user-id hex
// strings, or canonical emails for invitation changes.
type Result struct {
	Applied []string
	Failed  []string
}

// Partial reports whether any mirror write failed after the primary
// mutation succeeded. Handlers map this to 202 Accepted.
func (r Result) Partial() bool { return len(r.Failed) > 0 }

func (r *Result) applied(v string) { r.Applied = append(r.Applied, v) }
func (r *Result) failed(v string)  { r.Failed = append(r.Failed, v) }

// Engine performs dual-sided membership writes.
type Engine struct {
	Groups *groupstore.Store
	Users  *userstore.Store
	Log    *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Engine {
	return &Engine{
		Groups: groupstore.New(db),
		Users:  userstore.New(db),
		Log:    log,
	}
}

// AddUser grants the role to one user on both sides.
func (e *Engine) AddUser(ctx context.Context, groupID, userID primitive.ObjectID, role models.Role) (Result, error) {
	return e.pairWrite(ctx, groupID, userID, role, true)
}

// RemoveUser revokes the role from one user on both sides. Removing a
// member also clears any pending join request for the same group.
func (e *Engine) RemoveUser(ctx context.Context, groupID, userID primitive.ObjectID, role models.Role) (Result, error) {
	res, err := e.pairWrite(ctx, groupID, userID, role, false)
	if err != nil {
		return res, err
	}
	if role == models.RoleMember {
		e.clearRequest(ctx, groupID, userID, &res)
	}
	return res, nil
}

func (e *Engine) pairWrite(ctx context.Context, groupID, userID primitive.ObjectID, role models.Role, add bool) (Result, error) {
	var res Result
	groupDo, groupUndo := e.Groups.AddUser, e.Groups.RemoveUser
	userDo, userUndo := e.Users.AddGroup, e.Users.RemoveGroup
	if !add {
		groupDo, groupUndo = groupUndo, groupDo
		userDo, userUndo = userUndo, userDo
	}
	err := txn.BestEffort(ctx, e.Log,
		txn.Step{
			Name: "group." + role.GroupField(),
			Do:   func(ctx context.Context) error { return groupDo(ctx, groupID, role, userID) },
			Undo: func(ctx context.Context) error { return groupUndo(ctx, groupID, role, userID) },
		},
		txn.Step{
			Name: "user." + role.UserField(),
			Do: func(ctx context.Context) error {
				err := userDo(ctx, userID, role, groupID)
				// A group set can hold an id whose user document is
				// gone; skip the mirror like the bulk paths do.
				if errors.Is(err, userstore.ErrNotFound) {
					return nil
				}
				return err
			},
			Undo: func(ctx context.Context) error { return userUndo(ctx, userID, role, groupID) },
		},
	)
	if err != nil {
		if txn.IsPartial(err) {
			e.Log.Warn("membership write partially applied",
				zap.String("group_id", groupID.Hex()),
				zap.String("user_id", userID.Hex()),
				zap.String("role", string(role)),
				zap.Error(err),
			)
			res.failed(userID.Hex())
			return res, nil
		}
		return res, err
	}
	res.applied(userID.Hex())
	return res, nil
}

// clearRequest deletes a join request on both sides, best-effort. A
// request held by a user who just stopped being a member is stale either
// way, so failures are recorded, not rolled back.
func (e *Engine) clearRequest(ctx context.Context, groupID, userID primitive.ObjectID, res *Result) {
	gErr := e.Groups.RemoveUser(ctx, groupID, models.RoleRequester, userID)
	if errors.Is(gErr, groupstore.ErrNotFound) {
		gErr = nil
	}
	uErr := e.Users.RemoveGroup(ctx, userID, models.RoleRequester, groupID)
	if errors.Is(uErr, userstore.ErrNotFound) {
		uErr = nil
	}
	if gErr != nil || uErr != nil {
		e.Log.Warn("stale join request cleanup failed",
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", userID.Hex()),
			zap.NamedError("group_side", gErr),
			zap.NamedError("user_side", uErr),
		)
		res.failed(userID.Hex())
	}
}

// AddInvitation records an invitation on the group side (canonical
// email) and, when the invitee already has an account, mirrors the group
// id on the user side. A zero userID means no account yet; the user-side
// mirror is filled in at registration.
func (e *Engine) AddInvitation(ctx context.Context, groupID primitive.ObjectID, email string, userID primitive.ObjectID) (Result, error) {
	return e.invitationWrite(ctx, groupID, normalize.Email(email), userID, true)
}

// RemoveInvitation is the inverse of AddInvitation.
func (e *Engine) RemoveInvitation(ctx context.Context, groupID primitive.ObjectID, email string, userID primitive.ObjectID) (Result, error) {
	return e.invitationWrite(ctx, groupID, normalize.Email(email), userID, false)
}

func (e *Engine) invitationWrite(ctx context.Context, groupID primitive.ObjectID, email string, userID primitive.ObjectID, add bool) (Result, error) {
	var res Result
	groupDo, groupUndo := e.Groups.AddInvitation, e.Groups.RemoveInvitation
	userDo, userUndo := e.Users.AddGroup, e.Users.RemoveGroup
	if !add {
		groupDo, groupUndo = groupUndo, groupDo
		userDo, userUndo = userUndo, userDo
	}
	if userID.IsZero() {
		if err := groupDo(ctx, groupID, email); err != nil {
			return res, err
		}
		res.applied(email)
		return res, nil
	}
	err := txn.BestEffort(ctx, e.Log,
		txn.Step{
			Name: "group.invitations",
			Do:   func(ctx context.Context) error { return groupDo(ctx, groupID, email) },
			Undo: func(ctx context.Context) error { return groupUndo(ctx, groupID, email) },
		},
		txn.Step{
			Name: "user.group_invitations",
			Do:   func(ctx context.Context) error { return userDo(ctx, userID, models.RoleInvitee, groupID) },
			Undo: func(ctx context.Context) error { return userUndo(ctx, userID, models.RoleInvitee, groupID) },
		},
	)
	if err != nil {
		if txn.IsPartial(err) {
			res.failed(email)
			return res, nil
		}
		return res, err
	}
	res.applied(email)
	return res, nil
}

// ApplyGroupChange overwrites one of a group's id role-sets and fans out
// the mirror writes. The group side is authoritative: when it fails
// nothing else runs; after it succeeds each added or removed user is
// synced independently.
func (e *Engine) ApplyGroupChange(ctx context.Context, groupID primitive.ObjectID, role models.Role, old, new []primitive.ObjectID) (Result, error) {
	var res Result
	if role == models.RoleInvitee {
		return res, errors.New("invitee changes carry emails; use ApplyGroupInvitations")
	}
	added, removed := Diff(old, new)
	if len(added) == 0 && len(removed) == 0 {
		return res, nil
	}
	if err := e.Groups.SetRoleSet(ctx, groupID, role, new); err != nil {
		return res, fmt.Errorf("set %s: %w", role.GroupField(), err)
	}
	// The role-set ops accept unknown user ids (the source systems let
	// stale ids linger); a missing user mirror is skipped, not failed.
	for _, uid := range added {
		if err := e.Users.AddGroup(ctx, uid, role, groupID); err != nil && !errors.Is(err, userstore.ErrNotFound) {
			e.logMirrorFailure(groupID, uid.Hex(), role, err)
			res.failed(uid.Hex())
			continue
		}
		res.applied(uid.Hex())
	}
	for _, uid := range removed {
		if err := e.Users.RemoveGroup(ctx, uid, role, groupID); err != nil && !errors.Is(err, userstore.ErrNotFound) {
			e.logMirrorFailure(groupID, uid.Hex(), role, err)
			res.failed(uid.Hex())
			continue
		}
		res.applied(uid.Hex())
		if role == models.RoleMember {
			e.clearRequest(ctx, groupID, uid, &res)
		}
	}
	return res, nil
}

// ApplyGroupInvitations overwrites the group's invitation email set.
// Mirror writes only touch users that have an account for the email.
func (e *Engine) ApplyGroupInvitations(ctx context.Context, groupID primitive.ObjectID, old, new []string) (Result, error) {
	var res Result
	canonOld := canonEmails(old)
	canonNew := canonEmails(new)
	added, removed := Diff(canonOld, canonNew)
	if len(added) == 0 && len(removed) == 0 {
		return res, nil
	}
	if err := e.Groups.SetInvitations(ctx, groupID, canonNew); err != nil {
		return res, fmt.Errorf("set invitations: %w", err)
	}
	sync := func(email string, add bool) {
		u, err := e.Users.GetByEmail(ctx, email)
		if errors.Is(err, userstore.ErrNotFound) {
			res.applied(email)
			return
		}
		if err == nil {
			if add {
				err = e.Users.AddGroup(ctx, u.ID, models.RoleInvitee, groupID)
			} else {
				err = e.Users.RemoveGroup(ctx, u.ID, models.RoleInvitee, groupID)
			}
		}
		if err != nil {
			e.logMirrorFailure(groupID, email, models.RoleInvitee, err)
			res.failed(email)
			return
		}
		res.applied(email)
	}
	for _, email := range added {
		sync(email, true)
	}
	for _, email := range removed {
		sync(email, false)
	}
	return res, nil
}

// ApplyUserChange overwrites one of a user's mirror sets and fans out
// the group-side writes, the inverse direction of ApplyGroupChange. For
// the invitee role the group side stores the user's email.
func (e *Engine) ApplyUserChange(ctx context.Context, userID primitive.ObjectID, role models.Role, old, new []primitive.ObjectID) (Result, error) {
	var res Result
	added, removed := Diff(old, new)
	if len(added) == 0 && len(removed) == 0 {
		return res, nil
	}
	var email string
	if role == models.RoleInvitee {
		u, err := e.Users.GetByID(ctx, userID)
		if err != nil {
			return res, err
		}
		email = u.Email
	}
	if err := e.Users.SetGroupSet(ctx, userID, role, new); err != nil {
		return res, fmt.Errorf("set %s: %w", role.UserField(), err)
	}
	apply := func(gid primitive.ObjectID, add bool) {
		var err error
		switch {
		case role == models.RoleInvitee && add:
			err = e.Groups.AddInvitation(ctx, gid, email)
		case role == models.RoleInvitee:
			err = e.Groups.RemoveInvitation(ctx, gid, email)
		case add:
			err = e.Groups.AddUser(ctx, gid, role, userID)
		default:
			err = e.Groups.RemoveUser(ctx, gid, role, userID)
		}
		// A mirror entry can point at a group that has since been
		// deleted or unpublished; skip rather than fail.
		if err != nil && !errors.Is(err, groupstore.ErrNotFound) {
			e.logMirrorFailure(gid, userID.Hex(), role, err)
			res.failed(gid.Hex())
			return
		}
		res.applied(gid.Hex())
		if !add && role == models.RoleMember {
			e.clearRequest(ctx, gid, userID, &res)
		}
	}
	for _, gid := range added {
		apply(gid, true)
	}
	for _, gid := range removed {
		apply(gid, false)
	}
	return res, nil
}

func (e *Engine) logMirrorFailure(groupID primitive.ObjectID, subject string, role models.Role, err error) {
	e.Log.Warn("mirror write failed",
		zap.String("group_id", groupID.Hex()),
		zap.String("subject", subject),
		zap.String("role", string(role)),
		zap.Error(err),
	)
}

// Diff returns the values present only in new (added) and only in old
// (removed). Order follows the input slices; duplicates collapse.
func Diff[T comparable](old, new []T) (added, removed []T) {
	oldSet := make(map[T]struct{}, len(old))
	for _, v := range old {
		oldSet[v] = struct{}{}
	}
	newSet := make(map[T]struct{}, len(new))
	for _, v := range new {
		newSet[v] = struct{}{}
	}
	seen := make(map[T]struct{}, len(new))
	for _, v := range new {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := oldSet[v]; !ok {
			added = append(added, v)
		}
	}
	seen = make(map[T]struct{}, len(old))
	for _, v := range old {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := newSet[v]; !ok {
			removed = append(removed, v)
		}
	}
	return added, removed
}

func canonEmails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		out = append(out, normalize.Email(e))
	}
	return out
}
