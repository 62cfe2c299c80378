package onboarding

import (
	"github.com/anyrent/shopkit/pkg/statemachine"
	"github.com/anyrent/shopkit/pkg/tenant"
)

// Tenant lifecycle events. Registration fires EventActivate once the
// isolated database is ready; billing and support flows drive the rest.
const (
	EventActivate   statemachine.Event = "activate"
	EventDeactivate statemachine.Event = "deactivate"
	EventSuspend    statemachine.Event = "suspend"
	EventReactivate statemachine.Event = "reactivate"
)

// lifecycle builds the tenant state machine rehydrated at the given
// status. There is no terminal state: tenants are soft-disabled and can
// always come back.
//
//	provisioning → active → (inactive | suspended) → active
func lifecycle(current tenant.Status, apply statemachine.Action) *statemachine.Machine {
	var (
		provisioning = statemachine.State(tenant.StatusProvisioning)
		active       = statemachine.State(tenant.StatusActive)
		inactive     = statemachine.State(tenant.StatusInactive)
		suspended    = statemachine.State(tenant.StatusSuspended)
	)

	m := statemachine.New(provisioning)
	actions := []statemachine.Action{apply}
	m.AddTransition(provisioning, active, EventActivate, nil, actions)
	m.AddTransition(active, inactive, EventDeactivate, nil, actions)
	m.AddTransition(active, suspended, EventSuspend, nil, actions)
	m.AddTransition(inactive, active, EventReactivate, nil, actions)
	m.AddTransition(suspended, active, EventReactivate, nil, actions)
	m.SetCurrent(statemachine.State(current))
	return m
}
