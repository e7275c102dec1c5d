// Package invitetoken mints and validates stateless invitation tokens.
//
// A token binds an invitee identifier (canonical email or user-id hex)
// to a group and an expiry instant:
//
//	<expiry-unix-hex>.<hex sha256(identifier "_" groupID "_" expiry "_" secret)>
//
// The expiry rides inside the token and is covered by the digest, so
// validation recomputes one hash and compares in constant time. Nothing
// is stored server side; revoking the group-side invitation record is
// what invalidates a live token.
package invitetoken

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrExpired = errors.New("invitation token expired")
	ErrInvalid = errors.New("invitation token invalid")
)

// Service mints and validates tokens with a shared secret and TTL.
type Service struct {
	secret string
	ttl    time.Duration
	now    func() time.Time
}

// DefaultTTL matches the invitation-email validity window.
const DefaultTTL = 7 * 24 * time.Hour

// New returns a Service. A zero ttl falls back to DefaultTTL.
func New(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: secret, ttl: ttl, now: time.Now}
}

// TTL returns the configured validity window.
func (s *Service) TTL() time.Duration { return s.ttl }

// Generate mints a token for the identifier/group pair.
func (s *Service) Generate(identifier, groupID string) string {
	expiry := s.now().Add(s.ttl).Unix()
	return strconv.FormatInt(expiry, 16) + "." + s.digest(identifier, groupID, expiry)
}

// Validate checks a token against the identifier/group pair it should
// have been minted for. It returns nil, ErrExpired, or ErrInvalid.
func (s *Service) Validate(token, identifier, groupID string) error {
	expHex, mac, ok := strings.Cut(token, ".")
	if !ok {
		return ErrInvalid
	}
	expiry, err := strconv.ParseInt(expHex, 16, 64)
	if err != nil {
		return ErrInvalid
	}
	want := s.digest(identifier, groupID, expiry)
	if subtle.ConstantTimeCompare([]byte(mac), []byte(want)) != 1 {
		return ErrInvalid
	}
	if s.now().Unix() > expiry {
		return ErrExpired
	}
	return nil
}

func (s *Service) digest(identifier, groupID string, expiry int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s_%s_%d_%s", identifier, groupID, expiry, s.secret)))
	return hex.EncodeToString(sum[:])
}
