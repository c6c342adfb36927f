package domain

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	departmentdomain "github.com/pitlane-hq/pitlane/internal/department/domain"
)

// DefaultPolicy picks the department to activate when no valid hint exists.
// It receives the validated, ordered candidate list and returns the chosen
// id, or zero for none.
type DefaultPolicy func(candidates []departmentdomain.Department) snowflake.ID

// PriorityNamePolicy matches candidate names against the supplied keywords
// in order; earlier keywords win. Falls back to the first candidate. The
// keywords are read per call so a hot-reloaded list takes effect immediately.
func PriorityNamePolicy(keywords func() []string) DefaultPolicy {
	return func(candidates []departmentdomain.Department) snowflake.ID {
		for _, keyword := range keywords() {
			keyword = strings.ToLower(keyword)
			for i := range candidates {
				if strings.Contains(strings.ToLower(candidates[i].Name), keyword) {
					return candidates[i].ID
				}
			}
		}
		if len(candidates) > 0 {
			return candidates[0].ID
		}
		return 0
	}
}

// ServiceFirstPolicy prefers the first department whose name contains
// "service" (case-insensitive), falling back to the first candidate.
var ServiceFirstPolicy = PriorityNamePolicy(func() []string { return []string{"service"} })

// Machine is the selection reducer. Reduce is a pure transition function:
// same state and event in, same state and effects out.
type Machine struct {
	Policy DefaultPolicy
}

func NewMachine() *Machine {
	return &Machine{Policy: ServiceFirstPolicy}
}

// Reduce applies one event. Unknown or out-of-phase events leave the state
// unchanged, as do async results whose epoch has been superseded.
func (m *Machine) Reduce(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case SignedIn:
		if s.Phase != PhaseUnauthenticated && s.Phase != PhaseFailed {
			return s, nil
		}
		next := NewState()
		next.Phase = PhaseLoadingProfile
		return next, []Effect{EffectLoadProfile{UserID: ev.UserID}}

	case ProfileLoaded:
		if s.Phase != PhaseLoadingProfile {
			return s, nil
		}
		next := s
		next.Profile = ev.Profile
		next.Phase = PhaseResolvingStores
		next.Epoch++
		return next, []Effect{EffectResolveStores{Epoch: next.Epoch}}

	case ProfileFailed:
		if s.Phase != PhaseLoadingProfile {
			return s, nil
		}
		next := s
		next.Phase = PhaseFailed
		next.LastError = ev.Err.Error()
		return next, nil

	case StoresResolved:
		if ev.Epoch != s.Epoch {
			return s, nil
		}
		return m.applyStores(s, ev)

	case StoresFailed:
		if ev.Epoch != s.Epoch {
			return s, nil
		}
		// Resolution failure leaves any existing selection untouched.
		next := s
		next.Phase = PhaseReady
		next.Switching = false
		next.LastError = ev.Err.Error()
		return next, nil

	case DepartmentsResolved:
		if ev.Epoch != s.Epoch {
			return s, nil
		}
		return m.applyDepartments(s, ev)

	case DepartmentsFailed:
		if ev.Epoch != s.Epoch {
			return s, nil
		}
		next := s
		next.Phase = PhaseReady
		next.Switching = false
		next.LastError = ev.Err.Error()
		return next, nil

	case DependentDataSettled:
		if ev.Epoch != s.Epoch {
			return s, nil
		}
		next := s
		next.Switching = false
		return next, nil

	case PickStore:
		if s.Phase != PhaseReady {
			return s, nil
		}
		if ev.StoreID == s.ActiveStoreID {
			// Reselecting the active store cascades nothing.
			return s, nil
		}
		if !s.hasStoreCandidate(ev.StoreID) {
			return s, nil
		}
		return m.activateStore(s, ev.StoreID)

	case PickDepartment:
		if s.Phase != PhaseReady {
			return s, nil
		}
		if ev.DepartmentID == s.ActiveDepartmentID {
			return s, nil
		}
		if !s.hasDepartmentCandidate(ev.DepartmentID) {
			return s, nil
		}
		return m.activateDepartment(s, ev.DepartmentID)

	case RefreshScope:
		if s.Phase != PhaseReady {
			return s, nil
		}
		next := s
		next.Phase = PhaseResolvingStores
		next.LastError = ""
		next.Epoch++
		return next, []Effect{EffectResolveStores{Epoch: next.Epoch}}

	case SignOut:
		return NewState(), []Effect{EffectClearDependentData{}}
	}
	return s, nil
}

// applyStores runs the store-selection rule: a valid hint is restored,
// otherwise the first candidate is activated and the hint overwritten. Every
// activation persists the hint, including a restore.
func (m *Machine) applyStores(s State, ev StoresResolved) (State, []Effect) {
	next := s
	next.CandidateStores = ev.Scope.Stores
	next.CanSwitchStores = ev.Scope.CanSwitch
	next.LastError = ""

	if len(ev.Scope.Stores) == 0 {
		next.ActiveStoreID = 0
		next.ActiveDepartmentID = 0
		next.CandidateDepartments = nil
		next.Switching = false
		next.Phase = PhaseReady
		return next, []Effect{
			EffectClearStoreHint{},
			EffectClearDepartmentHint{},
			EffectClearDependentData{},
		}
	}

	target := parseHint(ev.Hint)
	if target == 0 || !next.hasStoreCandidate(target) {
		target = ev.Scope.Stores[0].ID
	}
	if target == next.ActiveStoreID {
		// Same store re-resolved: keep the department selection, refresh
		// the candidate list underneath it.
		next.Phase = PhaseResolvingDepartments
		next.Epoch++
		return next, []Effect{
			EffectPersistStoreHint{StoreID: target},
			EffectResolveDepartments{Epoch: next.Epoch, StoreID: target},
		}
	}
	return m.activateStore(next, target)
}

// activateStore switches the active store and cascades: the department
// selection and all dependent data are invalidated, the switching flag is
// raised, and department resolution starts under a fresh epoch.
func (m *Machine) activateStore(s State, storeID snowflake.ID) (State, []Effect) {
	next := s
	next.ActiveStoreID = storeID
	next.ActiveDepartmentID = 0
	next.CandidateDepartments = nil
	next.Switching = true
	next.Phase = PhaseResolvingDepartments
	next.Epoch++
	return next, []Effect{
		EffectPersistStoreHint{StoreID: storeID},
		EffectClearDependentData{},
		EffectResolveDepartments{Epoch: next.Epoch, StoreID: storeID},
	}
}

// applyDepartments validates candidates against the active store, then runs
// the department-selection rule. The store-equality check applies to every
// role: a grant-scoped candidate from another store never activates.
func (m *Machine) applyDepartments(s State, ev DepartmentsResolved) (State, []Effect) {
	filtered := make([]departmentdomain.Department, 0, len(ev.Departments))
	for _, department := range ev.Departments {
		if department.StoreID == s.ActiveStoreID {
			filtered = append(filtered, department)
		}
	}

	next := s
	next.CandidateDepartments = filtered
	next.Phase = PhaseReady
	next.LastError = ""

	if len(filtered) == 0 {
		next.ActiveDepartmentID = 0
		next.Switching = false
		return next, []Effect{
			EffectClearDepartmentHint{},
			EffectClearDependentData{},
		}
	}

	target := parseHint(ev.Hint)
	if target == 0 || !next.hasDepartmentCandidate(target) {
		target = m.Policy(filtered)
	}
	if target == 0 {
		next.ActiveDepartmentID = 0
		next.Switching = false
		return next, []Effect{
			EffectClearDepartmentHint{},
			EffectClearDependentData{},
		}
	}

	next.ActiveDepartmentID = target
	return next, []Effect{
		EffectPersistDepartmentHint{DepartmentID: target},
		EffectClearDependentData{},
		EffectLoadDependentData{Epoch: next.Epoch, StoreID: next.ActiveStoreID, DepartmentID: target},
	}
}

// activateDepartment switches departments within the active store: clear
// dependent data, persist the hint, and reload under a fresh epoch so a
// still-in-flight load for the previous department cannot land.
func (m *Machine) activateDepartment(s State, departmentID snowflake.ID) (State, []Effect) {
	next := s
	next.ActiveDepartmentID = departmentID
	next.Epoch++
	return next, []Effect{
		EffectClearDependentData{},
		EffectPersistDepartmentHint{DepartmentID: departmentID},
		EffectLoadDependentData{Epoch: next.Epoch, StoreID: next.ActiveStoreID, DepartmentID: departmentID},
	}
}

// parseHint turns persisted hint text into an id. Hints are untrusted; any
// unparseable value reads as "no hint".
func parseHint(raw string) snowflake.ID {
	if raw == "" {
		return 0
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0
	}
	return id
}
