package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legalPairs() map[[2]Status]bool {
	legal := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:    true,
		{StatusPending, StatusPreparing}:    true,
		{StatusConfirmed, StatusPreparing}:  true,
		{StatusPreparing, StatusReady}:      true,
		{StatusReady, StatusOutForDelivery}: true,
	}
	for _, from := range Statuses() {
		if from.Terminal() {
			continue
		}
		legal[[2]Status{from, StatusDelivered}] = true
		legal[[2]Status{from, StatusCancelled}] = true
	}
	return legal
}

func TestCanTransition_MatchesEdgeTable(t *testing.T) {
	legal := legalPairs()
	for _, from := range Statuses() {
		for _, to := range Statuses() {
			assert.Equal(t, legal[[2]Status{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestAuthorize_IllegalEdgeForEveryone(t *testing.T) {
	admin := Actor{ID: "admin-1", Roles: Roles{RoleAdmin, RoleSuperAdmin}}
	for _, from := range Statuses() {
		for _, to := range Statuses() {
			if CanTransition(from, to) {
				continue
			}
			order := &Order{ID: "o-1", Status: from}
			require.ErrorIs(t, Authorize(order, to, admin), ErrIllegalTransition, "%s -> %s", from, to)
		}
	}
}

func TestAuthorize_AdminsCannotSkipStages(t *testing.T) {
	admin := Actor{ID: "admin-1", Roles: Roles{RoleAdmin}}
	order := &Order{ID: "o-1", Status: StatusPending}
	require.ErrorIs(t, Authorize(order, StatusReady, admin), ErrIllegalTransition)
	require.NoError(t, Authorize(order, StatusDelivered, admin))
	require.NoError(t, Authorize(order, StatusCancelled, admin))
}

func TestAuthorize_RoleBoundaries(t *testing.T) {
	caterer := Actor{ID: "chef", Roles: Roles{RoleCaterer}}
	customer := Actor{ID: "cust", Roles: Roles{RoleCustomer}}

	preparing := &Order{ID: "o-1", Status: StatusPending}
	require.NoError(t, Authorize(preparing, StatusPreparing, caterer))
	require.ErrorIs(t, Authorize(preparing, StatusPreparing, customer), ErrRoleNotPermitted)
	require.ErrorIs(t, Authorize(preparing, StatusConfirmed, caterer), ErrRoleNotPermitted)
	require.ErrorIs(t, Authorize(preparing, StatusCancelled, caterer), ErrRoleNotPermitted)

	ready := &Order{ID: "o-2", Status: StatusReady}
	require.ErrorIs(t, Authorize(ready, StatusOutForDelivery, caterer), ErrRoleNotPermitted)
}

func TestAuthorize_OnlyAssignedDriverDelivers(t *testing.T) {
	order := &Order{ID: "o-1", Status: StatusOutForDelivery, DriverID: "driver-1"}

	assigned := Actor{ID: "driver-1", Roles: Roles{RoleDeliveryGuy}}
	other := Actor{ID: "driver-2", Roles: Roles{RoleDeliveryGuy}}

	require.NoError(t, Authorize(order, StatusDelivered, assigned))
	require.ErrorIs(t, Authorize(order, StatusDelivered, other), ErrNotAssignedDriver)
	require.ErrorIs(t, Authorize(order, StatusCancelled, assigned), ErrRoleNotPermitted)

	ready := &Order{ID: "o-2", Status: StatusReady, DriverID: "driver-1"}
	require.ErrorIs(t, Authorize(ready, StatusDelivered, assigned), ErrRoleNotPermitted)
}

func TestCanEnter(t *testing.T) {
	order := &Order{ID: "o-1", Status: StatusPreparing}
	require.True(t, CanEnter(order, StatusPreparing, Actor{Roles: Roles{RoleCaterer}}))
	require.False(t, CanEnter(order, StatusPreparing, Actor{Roles: Roles{RoleDeliveryGuy}}))
	require.False(t, CanEnter(order, StatusPending, Actor{Roles: Roles{RoleCaterer}}))
	require.True(t, CanEnter(order, StatusPending, Actor{Roles: Roles{RoleSuperAdmin}}))
}

func TestEveryEdgeRaisesRank(t *testing.T) {
	for pair := range legalPairs() {
		assert.Greater(t, pair[1].Rank(), pair[0].Rank(), "%s -> %s", pair[0], pair[1])
	}
	assert.Equal(t, -1, Status("LOST").Rank())
}
