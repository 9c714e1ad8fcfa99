package model

import "github.com/google/uuid"

// Role identifies the kind of caller. Identity itself is established
// upstream; this service only consumes the id/role pair.
type Role string

const (
	RoleCustomer     Role = "CUSTOMER"
	RolePhotographer Role = "PHOTOGRAPHER"
	RoleAdmin        Role = "ADMIN"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// CanManage reports whether the actor may act on a resource owned by ownerID.
func (a Actor) CanManage(ownerID uuid.UUID) bool {
	return a.Role == RoleAdmin || a.ID == ownerID
}
