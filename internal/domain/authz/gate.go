// Package authz decides whether a principal may act on a resource.
//
// Rules are evaluated in order: the supreme admin identity is always allowed,
// then ownership (seller profile or ADMIN role), then self access. Anything
// else is denied with 401 when the principal carries no identity and 403
// otherwise.
package authz

import (
	"strings"

	"bookmarket.backend/internal/domain/entities"
	domainerrors "bookmarket.backend/internal/domain/errors"
	"github.com/google/uuid"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   uuid.UUID
	Email    string
	Role     entities.UserRole
	SellerID *uuid.UUID
}

// Anonymous reports whether the principal carries no identity.
func (p Principal) Anonymous() bool {
	return p.UserID == uuid.Nil
}

// Gate evaluates authorization rules. It holds no per-request state.
type Gate struct {
	supremeAdminEmail string
}

// NewGate creates a gate. An empty email disables the supreme admin rule.
func NewGate(supremeAdminEmail string) *Gate {
	return &Gate{supremeAdminEmail: strings.ToLower(strings.TrimSpace(supremeAdminEmail))}
}

// IsSupremeAdmin reports whether p matches the configured supreme admin.
func (g *Gate) IsSupremeAdmin(p Principal) bool {
	if g == nil || g.supremeAdminEmail == "" || p.Anonymous() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(p.Email), g.supremeAdminEmail)
}

// IsAdmin reports whether p has administrative rights.
func (g *Gate) IsAdmin(p Principal) bool {
	return g.IsSupremeAdmin(p) || (!p.Anonymous() && p.Role == entities.UserRoleAdmin)
}

// RequireAuthenticated denies anonymous principals.
func (g *Gate) RequireAuthenticated(p Principal) error {
	if p.Anonymous() {
		return domainerrors.Unauthorized("Authentication required")
	}
	return nil
}

// RequireAdmin allows the supreme admin and ADMIN role only.
func (g *Gate) RequireAdmin(p Principal) error {
	if g.IsAdmin(p) {
		return nil
	}
	return deny(p, "Admin access required")
}

// RequireSeller allows principals that own a seller profile.
func (g *Gate) RequireSeller(p Principal) error {
	if g.IsAdmin(p) || (!p.Anonymous() && p.Role.CanSell()) {
		return nil
	}
	return deny(p, "Seller access required")
}

// AuthorizeOwner allows the seller that owns the resource, or an admin.
func (g *Gate) AuthorizeOwner(p Principal, ownerSellerID uuid.UUID) error {
	if g.IsAdmin(p) {
		return nil
	}
	if !p.Anonymous() && p.SellerID != nil && *p.SellerID == ownerSellerID {
		return nil
	}
	return deny(p, "You do not own this resource")
}

// AuthorizeSelf allows a principal to act only on its own user records.
func (g *Gate) AuthorizeSelf(p Principal, userID uuid.UUID) error {
	if g.IsSupremeAdmin(p) {
		return nil
	}
	if !p.Anonymous() && p.UserID == userID {
		return nil
	}
	return deny(p, "You can only access your own records")
}

func deny(p Principal, message string) error {
	if p.Anonymous() {
		return domainerrors.Unauthorized("Authentication required")
	}
	return domainerrors.Forbidden(message)
}
