// Package domain contains the store/department selection state machine. All
// tenant scoping flows through it: nothing downstream may render data for a
// store or department the machine has not validated and activated.
package domain

import (
	"github.com/bwmarrin/snowflake"
	departmentdomain "github.com/pitlane-hq/pitlane/internal/department/domain"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	storedomain "github.com/pitlane-hq/pitlane/internal/store/domain"
)

type Phase string

const (
	PhaseUnauthenticated      Phase = "unauthenticated"
	PhaseLoadingProfile       Phase = "loading_profile"
	PhaseResolvingStores      Phase = "resolving_stores"
	PhaseResolvingDepartments Phase = "resolving_departments"
	PhaseReady                Phase = "ready"
	PhaseFailed               Phase = "failed"
)

// State is the single owned copy of the selection context. Views read it;
// only Machine.Reduce writes it. A zero ActiveStoreID/ActiveDepartmentID
// means "none selected".
//
// Invariants, held structurally by the reducer:
//   - ActiveDepartmentID non-zero implies the referenced department has
//     StoreID == ActiveStoreID;
//   - ActiveDepartmentID is zero whenever ActiveStoreID is zero;
//   - Switching eventually lowers: on dependent-data settle, on an empty
//     department candidate set, and on a validation-cleared department.
type State struct {
	Phase   Phase
	Profile *profiledomain.Profile

	CandidateStores      []storedomain.Store
	CanSwitchStores      bool
	CandidateDepartments []departmentdomain.Department

	ActiveStoreID      snowflake.ID
	ActiveDepartmentID snowflake.ID

	// Switching bridges the interval between a store change and the first
	// complete dependent-data load for the resulting department.
	Switching bool

	// Epoch tags every asynchronous request issued by the machine. Results
	// carrying a stale epoch are discarded, never applied.
	Epoch uint64

	// LastError records the most recent non-terminal resolution failure for
	// display; it never clears existing selection state.
	LastError string
}

// NewState returns the signed-out initial state.
func NewState() State {
	return State{Phase: PhaseUnauthenticated}
}

// ActiveStore returns the active store row, if any.
func (s State) ActiveStore() *storedomain.Store {
	for i := range s.CandidateStores {
		if s.CandidateStores[i].ID == s.ActiveStoreID {
			return &s.CandidateStores[i]
		}
	}
	return nil
}

// ActiveDepartment returns the active department row, if any.
func (s State) ActiveDepartment() *departmentdomain.Department {
	for i := range s.CandidateDepartments {
		if s.CandidateDepartments[i].ID == s.ActiveDepartmentID {
			return &s.CandidateDepartments[i]
		}
	}
	return nil
}

func (s State) hasStoreCandidate(id snowflake.ID) bool {
	for i := range s.CandidateStores {
		if s.CandidateStores[i].ID == id {
			return true
		}
	}
	return false
}

func (s State) hasDepartmentCandidate(id snowflake.ID) bool {
	for i := range s.CandidateDepartments {
		if s.CandidateDepartments[i].ID == id {
			return true
		}
	}
	return false
}
