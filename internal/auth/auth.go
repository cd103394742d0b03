package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

var (
	ErrUnauthenticated = errors.New("missing or unknown credentials")
	ErrForbidden       = errors.New("caller lacks the required role")
)

// User is the resolved caller of a request.
type User struct {
	ID   int64
	Role Role
}

// Identity resolves a bearer token to the calling user. The platform's
// identity provider lives outside this core; this interface is all the
// handlers know about it.
type Identity interface {
	Resolve(ctx context.Context, token string) (*User, error)
}

// Satisfies reports whether a caller with role r may pass a gate
// requiring role required. Admins pass every gate.
func (r Role) Satisfies(required Role) bool {
	return r == required || r == RoleAdmin
}

// StaticIdentity maps fixed tokens to users. It backs dev setups and
// tests; production wires the real identity provider instead.
type StaticIdentity struct {
	mu     sync.RWMutex
	tokens map[string]User
}

func NewStaticIdentity() *StaticIdentity {
	return &StaticIdentity{tokens: make(map[string]User)}
}

func (s *StaticIdentity) Register(token string, user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = user
}

func (s *StaticIdentity) Resolve(_ context.Context, token string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.tokens[token]
	if !ok {
		return nil, ErrUnauthenticated
	}
	return &user, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
