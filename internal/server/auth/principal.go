package auth

import (
	"context"
	"strconv"

	"github.com/dmitrijs2005/chatandpay/internal/common"
	"github.com/dmitrijs2005/chatandpay/internal/server/models"
)

// Details is what the authorization layer needs to know about an
// authenticated account.
type Details interface {
	Username() string
	Password() string
	Authorities() []string
	IsAccountNonExpired() bool
	IsAccountNonLocked() bool
	IsCredentialsNonExpired() bool
	IsEnabled() bool
}

// Principal is a read-only view of a User for the authorization layer.
type Principal struct {
	user *models.User
}

var _ Details = (*Principal)(nil)

// NewPrincipal wraps user. It does no I/O.
func NewPrincipal(user *models.User) *Principal {
	return &Principal{user: user}
}

// Username is the decimal user id, not the login handle.
func (p *Principal) Username() string { return strconv.FormatInt(p.user.ID, 10) }

func (p *Principal) Password() string { return p.user.Password }

func (p *Principal) Authorities() []string { return []string{p.user.Role} }

func (p *Principal) IsAccountNonExpired() bool     { return true }
func (p *Principal) IsAccountNonLocked() bool      { return true }
func (p *Principal) IsCredentialsNonExpired() bool { return true }
func (p *Principal) IsEnabled() bool               { return true }

// User returns the wrapped user.
func (p *Principal) User() *models.User { return p.user }

// HasAuthority reports whether the principal holds role.
func (p *Principal) HasAuthority(role string) bool {
	for _, a := range p.Authorities() {
		if a == role {
			return true
		}
	}
	return false
}

// CanManage reports whether the principal may change or delete the user with id.
// Owners and admins may.
func (p *Principal) CanManage(id int64) bool {
	return p.user.ID == id || p.HasAuthority(common.RoleAdmin)
}

type principalKey struct{}

// WithPrincipal returns a child context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
