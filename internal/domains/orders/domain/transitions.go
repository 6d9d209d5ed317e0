package domain

import "errors"

var (
	// ErrIllegalTransition means no edge leaves the current status towards the target.
	ErrIllegalTransition = errors.New("transition is not allowed from the current status")
	// ErrRoleNotPermitted means the edge exists but the caller holds none of its roles.
	ErrRoleNotPermitted = errors.New("caller roles do not permit this transition")
	// ErrNotAssignedDriver means a driver tried to act on an order bound to someone else.
	ErrNotAssignedDriver = errors.New("only the assigned driver may act on this order")
)

// Edge is one row of the transition table. An empty From means any non-terminal status.
type Edge struct {
	From  []Status
	To    Status
	Roles Roles
	// AssignedDriverOnly restricts the edge to the driver bound to the order.
	AssignedDriverOnly bool
}

var kitchenRoles = Roles{RoleCaterer, RoleAdmin, RoleSuperAdmin}

var edges = []Edge{
	{From: []Status{StatusPending}, To: StatusConfirmed, Roles: adminRoles},
	{From: []Status{StatusPending, StatusConfirmed}, To: StatusPreparing, Roles: kitchenRoles},
	{From: []Status{StatusPreparing}, To: StatusReady, Roles: kitchenRoles},
	{From: []Status{StatusReady}, To: StatusOutForDelivery, Roles: adminRoles},
	{To: StatusDelivered, Roles: adminRoles},
	{From: []Status{StatusOutForDelivery}, To: StatusDelivered, Roles: Roles{RoleDeliveryGuy}, AssignedDriverOnly: true},
	{To: StatusCancelled, Roles: adminRoles},
}

// Edges returns a copy of the transition table.
func Edges() []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

func (e Edge) leaves(from Status) bool {
	if from.Terminal() {
		return false
	}
	if len(e.From) == 0 {
		return true
	}
	for _, s := range e.From {
		if s == from {
			return true
		}
	}
	return false
}

func (e Edge) permits(actor Actor, order *Order) bool {
	if !actor.Roles.Intersects(e.Roles) {
		return false
	}
	if e.AssignedDriverOnly {
		return order != nil && order.DriverID != "" && order.DriverID == actor.ID
	}
	return true
}

// CanTransition reports whether any edge connects the two statuses.
func CanTransition(from, to Status) bool {
	for _, e := range edges {
		if e.To == to && e.leaves(from) {
			return true
		}
	}
	return false
}

// Authorize decides whether the actor may move the order to the target status.
// It returns ErrIllegalTransition when no edge exists, and ErrRoleNotPermitted or
// ErrNotAssignedDriver when an edge exists but none of them admits the actor.
func Authorize(order *Order, to Status, actor Actor) error {
	var candidate *Edge
	for i := range edges {
		e := &edges[i]
		if e.To != to || !e.leaves(order.Status) {
			continue
		}
		if e.permits(actor, order) {
			return nil
		}
		if candidate == nil || actor.Roles.Intersects(e.Roles) {
			candidate = e
		}
	}
	if candidate == nil {
		return ErrIllegalTransition
	}
	if candidate.AssignedDriverOnly && actor.Roles.Intersects(candidate.Roles) {
		return ErrNotAssignedDriver
	}
	return ErrRoleNotPermitted
}

// CanEnter reports whether the actor holds a role that may put an order into
// the status. PENDING has no inbound edge and is reserved for admins.
func CanEnter(order *Order, status Status, actor Actor) bool {
	if status == StatusPending {
		return actor.Roles.Intersects(adminRoles)
	}
	for _, e := range edges {
		if e.To == status && e.permits(actor, order) {
			return true
		}
	}
	return false
}
