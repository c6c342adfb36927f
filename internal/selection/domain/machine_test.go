package domain

import (
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	departmentdomain "github.com/pitlane-hq/pitlane/internal/department/domain"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	storedomain "github.com/pitlane-hq/pitlane/internal/store/domain"
)

var (
	storeAlpha = storedomain.Store{ID: snowflake.ID(11), Name: "Alpha Motors"}
	storeBeta  = storedomain.Store{ID: snowflake.ID(12), Name: "Beta Auto"}

	deptAlphaSales   = departmentdomain.Department{ID: snowflake.ID(101), StoreID: storeAlpha.ID, Name: "New Car Sales"}
	deptAlphaService = departmentdomain.Department{ID: snowflake.ID(102), StoreID: storeAlpha.ID, Name: "Service Drive"}
	deptBetaService  = departmentdomain.Department{ID: snowflake.ID(201), StoreID: storeBeta.ID, Name: "Service Lane"}
)

func testProfile() *profiledomain.Profile {
	return &profiledomain.Profile{UserID: snowflake.ID(7), Role: profiledomain.RoleStoreGM}
}

func twoStoreScope() storedomain.StoreScope {
	return storedomain.StoreScope{Stores: []storedomain.Store{storeAlpha, storeBeta}, CanSwitch: true}
}

// drive applies events in order and returns the final state, checking the
// core invariants after every step.
func drive(t *testing.T, m *Machine, s State, events ...Event) State {
	t.Helper()
	for _, ev := range events {
		s, _ = m.Reduce(s, ev)
		assertInvariants(t, s)
	}
	return s
}

func assertInvariants(t *testing.T, s State) {
	t.Helper()
	if s.ActiveStoreID == 0 && s.ActiveDepartmentID != 0 {
		t.Fatalf("active department %s with no active store", s.ActiveDepartmentID)
	}
	if s.ActiveDepartmentID != 0 {
		department := s.ActiveDepartment()
		if department == nil {
			t.Fatalf("active department %s not in candidate set", s.ActiveDepartmentID)
		}
		if department.StoreID != s.ActiveStoreID {
			t.Fatalf("active department %s belongs to store %s, active store is %s",
				department.ID, department.StoreID, s.ActiveStoreID)
		}
	}
}

func signedInResolvingStores(t *testing.T, m *Machine) State {
	t.Helper()
	s := drive(t, m, NewState(),
		SignedIn{UserID: snowflake.ID(7)},
		ProfileLoaded{Profile: testProfile()},
	)
	if s.Phase != PhaseResolvingStores {
		t.Fatalf("expected resolving_stores, got %s", s.Phase)
	}
	return s
}

func readyOnAlphaService(t *testing.T, m *Machine) State {
	t.Helper()
	s := signedInResolvingStores(t, m)
	s = drive(t, m, s,
		StoresResolved{Epoch: s.Epoch, Scope: twoStoreScope()},
	)
	s = drive(t, m, s,
		DepartmentsResolved{Epoch: s.Epoch, Departments: []departmentdomain.Department{deptAlphaSales, deptAlphaService}},
		DependentDataSettled{Epoch: s.Epoch},
	)
	if s.Phase != PhaseReady || s.Switching {
		t.Fatalf("expected settled ready state, got phase=%s switching=%v", s.Phase, s.Switching)
	}
	return s
}

func TestSignInActivatesFirstStoreAndServiceDepartment(t *testing.T) {
	m := NewMachine()
	s := signedInResolvingStores(t, m)

	s, effects := m.Reduce(s, StoresResolved{Epoch: s.Epoch, Scope: twoStoreScope()})
	if s.ActiveStoreID != storeAlpha.ID {
		t.Fatalf("expected first store activated, got %s", s.ActiveStoreID)
	}
	if !s.Switching {
		t.Fatal("expected switching raised after store activation")
	}
	if !hasEffect[EffectPersistStoreHint](effects) {
		t.Fatal("expected store hint persisted on default activation")
	}

	s, effects = m.Reduce(s, DepartmentsResolved{
		Epoch:       s.Epoch,
		Departments: []departmentdomain.Department{deptAlphaSales, deptAlphaService},
	})
	if s.ActiveDepartmentID != deptAlphaService.ID {
		t.Fatalf("expected service-named department preferred, got %s", s.ActiveDepartmentID)
	}
	if !hasEffect[EffectLoadDependentData](effects) {
		t.Fatal("expected dependent data load enqueued")
	}
	if !s.Switching {
		t.Fatal("switching must stay raised until dependent data settles")
	}

	s, _ = m.Reduce(s, DependentDataSettled{Epoch: s.Epoch})
	if s.Switching {
		t.Fatal("expected switching lowered once dependent data settled")
	}
}

func TestValidStoreHintRestored(t *testing.T) {
	m := NewMachine()
	s := signedInResolvingStores(t, m)

	s, effects := m.Reduce(s, StoresResolved{Epoch: s.Epoch, Scope: twoStoreScope(), Hint: storeBeta.ID.String()})
	if s.ActiveStoreID != storeBeta.ID {
		t.Fatalf("expected hinted store restored, got %s", s.ActiveStoreID)
	}
	// A restore persists the hint the same as a fresh pick.
	if !hasEffect[EffectPersistStoreHint](effects) {
		t.Fatal("expected hint persisted on restore")
	}
}

func TestGhostHintsFallBackToDefaults(t *testing.T) {
	m := NewMachine()
	s := signedInResolvingStores(t, m)

	// Store hint references a store that no longer exists; department hint
	// is equally stale. Both are silently replaced, never surfaced.
	s, _ = m.Reduce(s, StoresResolved{Epoch: s.Epoch, Scope: twoStoreScope(), Hint: "S-ghost"})
	if s.ActiveStoreID != storeAlpha.ID {
		t.Fatalf("expected fallback to first store, got %s", s.ActiveStoreID)
	}

	s, _ = m.Reduce(s, DepartmentsResolved{
		Epoch:       s.Epoch,
		Departments: []departmentdomain.Department{deptAlphaSales, deptAlphaService},
		Hint:        "D-old",
	})
	if s.ActiveDepartmentID != deptAlphaService.ID {
		t.Fatalf("expected default policy after discarded hint, got %s", s.ActiveDepartmentID)
	}
	assertInvariants(t, s)
}

func TestAbsentStoreIDHintFallsBack(t *testing.T) {
	m := NewMachine()
	s := signedInResolvingStores(t, m)

	// Parseable id, but not in the candidate set.
	s, _ = m.Reduce(s, StoresResolved{Epoch: s.Epoch, Scope: twoStoreScope(), Hint: snowflake.ID(999).String()})
	if s.ActiveStoreID != storeAlpha.ID {
		t.Fatalf("expected fallback to first store, got %s", s.ActiveStoreID)
	}
}

func TestCrossStoreDepartmentHintDiscarded(t *testing.T) {
	m := NewMachine()
	s := signedInResolvingStores(t, m)
	s = drive(t, m, s, StoresResolved{Epoch: s.Epoch, Scope: twoStoreScope()})

	// Candidates include a grant that belongs to another store; the hint
	// points straight at it. Both must be rejected by the store cross-check.
	s, _ = m.Reduce(s, DepartmentsResolved{
		Epoch:       s.Epoch,
		Departments: []departmentdomain.Department{deptAlphaSales, deptBetaService},
		Hint:        deptBetaService.ID.String(),
	})
	if s.ActiveDepartmentID != deptAlphaSales.ID {
		t.Fatalf("expected cross-store hint discarded in favor of default, got %s", s.ActiveDepartmentID)
	}
	for _, department := range s.CandidateDepartments {
		if department.StoreID != s.ActiveStoreID {
			t.Fatalf("cross-store department %s kept in candidate set", department.ID)
		}
	}
}

func TestReselectActiveStoreIsNoOp(t *testing.T) {
	m := NewMachine()
	s := readyOnAlphaService(t, m)

	before := s
	s, effects := m.Reduce(s, PickStore{StoreID: storeAlpha.ID})
	if len(effects) != 0 {
		t.Fatalf("expected no effects on reselect, got %d", len(effects))
	}
	if s.ActiveDepartmentID != before.ActiveDepartmentID || s.Epoch != before.Epoch {
		t.Fatal("reselecting the active store must not cascade")
	}
}

func TestPickStoreCascadesInvalidation(t *testing.T) {
	m := NewMachine()
	s := readyOnAlphaService(t, m)

	s, effects := m.Reduce(s, PickStore{StoreID: storeBeta.ID})
	if s.ActiveStoreID != storeBeta.ID {
		t.Fatalf("expected store switched, got %s", s.ActiveStoreID)
	}
	if s.ActiveDepartmentID != 0 {
		t.Fatal("expected department cleared on store switch")
	}
	if !s.Switching {
		t.Fatal("expected switching raised")
	}
	if !hasEffect[EffectClearDependentData](effects) || !hasEffect[EffectResolveDepartments](effects) {
		t.Fatal("expected dependent data cleared and department resolution enqueued")
	}
	assertInvariants(t, s)
}

func TestEmptyDepartmentScopeLowersSwitching(t *testing.T) {
	m := NewMachine()
	s := readyOnAlphaService(t, m)
	s = drive(t, m, s, PickStore{StoreID: storeBeta.ID})
	if !s.Switching {
		t.Fatal("expected switching raised mid-cascade")
	}

	s, effects := m.Reduce(s, DepartmentsResolved{Epoch: s.Epoch, Departments: nil})
	if s.Switching {
		t.Fatal("empty candidate set must lower switching within the cycle")
	}
	if s.ActiveDepartmentID != 0 {
		t.Fatal("expected no department activated")
	}
	if !hasEffect[EffectClearDepartmentHint](effects) {
		t.Fatal("expected department hint cleared")
	}
}

func TestEmptyStoreScopeClearsEverything(t *testing.T) {
	m := NewMachine()
	s := signedInResolvingStores(t, m)

	s, effects := m.Reduce(s, StoresResolved{Epoch: s.Epoch, Scope: storedomain.StoreScope{}})
	if s.Phase != PhaseReady {
		t.Fatalf("expected ready with empty scope, got %s", s.Phase)
	}
	if s.ActiveStoreID != 0 || s.ActiveDepartmentID != 0 || s.Switching {
		t.Fatal("expected fully cleared selection")
	}
	if !hasEffect[EffectClearStoreHint](effects) || !hasEffect[EffectClearDepartmentHint](effects) {
		t.Fatal("expected both hints cleared")
	}
}

func TestStaleDependentDataResultDiscarded(t *testing.T) {
	m := NewMachine()
	s := readyOnAlphaService(t, m)
	staleEpoch := s.Epoch

	// Switch departments while the previous department's load is in flight.
	s, _ = m.Reduce(s, PickDepartment{DepartmentID: deptAlphaSales.ID})
	if s.Epoch == staleEpoch {
		t.Fatal("expected epoch bumped on department switch")
	}

	// The late result for the old department must not settle the new one.
	s.Switching = true
	next, _ := m.Reduce(s, DependentDataSettled{Epoch: staleEpoch})
	if !next.Switching {
		t.Fatal("stale settle must be discarded")
	}
	next, _ = m.Reduce(s, DependentDataSettled{Epoch: s.Epoch})
	if next.Switching {
		t.Fatal("current-epoch settle must apply")
	}
}

func TestStaleStoreResolutionDiscarded(t *testing.T) {
	m := NewMachine()
	s := readyOnAlphaService(t, m)

	before := s
	s, effects := m.Reduce(s, StoresResolved{Epoch: s.Epoch - 1, Scope: storedomain.StoreScope{}})
	if len(effects) != 0 || s.ActiveStoreID != before.ActiveStoreID {
		t.Fatal("superseded store resolution must be discarded")
	}
}

func TestScopeFailureKeepsExistingSelection(t *testing.T) {
	m := NewMachine()
	s := readyOnAlphaService(t, m)

	s, _ = m.Reduce(s, RefreshScope{})
	if s.Phase != PhaseResolvingStores {
		t.Fatalf("expected resolving_stores, got %s", s.Phase)
	}

	s, _ = m.Reduce(s, StoresFailed{Epoch: s.Epoch, Err: errors.New("query timeout")})
	if s.Phase != PhaseReady {
		t.Fatalf("expected degraded ready, got %s", s.Phase)
	}
	if s.ActiveStoreID != storeAlpha.ID || s.ActiveDepartmentID != deptAlphaService.ID {
		t.Fatal("resolution failure must not clear existing selection")
	}
	if s.LastError == "" {
		t.Fatal("expected failure recorded for display")
	}
}

func TestProfileFailureIsTerminal(t *testing.T) {
	m := NewMachine()
	s := drive(t, m, NewState(), SignedIn{UserID: snowflake.ID(7)})

	s, _ = m.Reduce(s, ProfileFailed{Err: errors.New("profile fetch failed")})
	if s.Phase != PhaseFailed {
		t.Fatalf("expected failed phase, got %s", s.Phase)
	}

	// Retry goes back through sign-in.
	s, _ = m.Reduce(s, SignedIn{UserID: snowflake.ID(7)})
	if s.Phase != PhaseLoadingProfile {
		t.Fatalf("expected retry to reload profile, got %s", s.Phase)
	}
}

func TestSignOutResets(t *testing.T) {
	m := NewMachine()
	s := readyOnAlphaService(t, m)

	s, _ = m.Reduce(s, SignOut{})
	if s.Phase != PhaseUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", s.Phase)
	}
	if s.ActiveStoreID != 0 || s.ActiveDepartmentID != 0 || len(s.CandidateStores) != 0 {
		t.Fatal("expected zeroed state after sign-out")
	}
}

func TestPickDepartmentBumpsEpochAndReloads(t *testing.T) {
	m := NewMachine()
	s := readyOnAlphaService(t, m)
	before := s.Epoch

	s, effects := m.Reduce(s, PickDepartment{DepartmentID: deptAlphaSales.ID})
	if s.ActiveDepartmentID != deptAlphaSales.ID {
		t.Fatalf("expected department switched, got %s", s.ActiveDepartmentID)
	}
	if s.Epoch != before+1 {
		t.Fatal("expected fresh epoch for the reload")
	}
	if !hasEffect[EffectClearDependentData](effects) || !hasEffect[EffectPersistDepartmentHint](effects) {
		t.Fatal("expected clear-then-persist-then-load cascade")
	}
	assertInvariants(t, s)
}

func TestOverridableDefaultPolicy(t *testing.T) {
	m := NewMachine()
	m.Policy = func(candidates []departmentdomain.Department) snowflake.ID {
		return candidates[len(candidates)-1].ID
	}
	s := signedInResolvingStores(t, m)
	s = drive(t, m, s, StoresResolved{Epoch: s.Epoch, Scope: twoStoreScope()})

	s, _ = m.Reduce(s, DepartmentsResolved{
		Epoch:       s.Epoch,
		Departments: []departmentdomain.Department{deptAlphaSales, deptAlphaService},
	})
	if s.ActiveDepartmentID != deptAlphaService.ID {
		t.Fatalf("expected override policy honored, got %s", s.ActiveDepartmentID)
	}
}

func TestServiceFirstPolicy(t *testing.T) {
	if got := ServiceFirstPolicy([]departmentdomain.Department{deptAlphaSales, deptAlphaService}); got != deptAlphaService.ID {
		t.Fatalf("expected service-named department, got %s", got)
	}
	if got := ServiceFirstPolicy([]departmentdomain.Department{deptAlphaSales}); got != deptAlphaSales.ID {
		t.Fatalf("expected first candidate fallback, got %s", got)
	}
	if got := ServiceFirstPolicy(nil); got != 0 {
		t.Fatalf("expected zero for empty candidates, got %s", got)
	}
}

func hasEffect[E Effect](effects []Effect) bool {
	for _, effect := range effects {
		if _, ok := effect.(E); ok {
			return true
		}
	}
	return false
}
