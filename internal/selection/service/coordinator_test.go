package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	departmentdomain "github.com/pitlane-hq/pitlane/internal/department/domain"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	"github.com/pitlane-hq/pitlane/internal/selection/domain"
	"github.com/pitlane-hq/pitlane/internal/selection/repository"
	storedomain "github.com/pitlane-hq/pitlane/internal/store/domain"
	"go.uber.org/zap"
)

var (
	userID = snowflake.ID(7)

	storeOne = storedomain.Store{ID: snowflake.ID(11), Name: "Harbor Honda"}
	storeTwo = storedomain.Store{ID: snowflake.ID(12), Name: "Summit Subaru"}

	deptOneSales   = departmentdomain.Department{ID: snowflake.ID(101), StoreID: storeOne.ID, Name: "New Car Sales"}
	deptOneService = departmentdomain.Department{ID: snowflake.ID(102), StoreID: storeOne.ID, Name: "Service Drive"}
	deptTwoService = departmentdomain.Department{ID: snowflake.ID(201), StoreID: storeTwo.ID, Name: "Service Lane"}
)

type stubProfiles struct {
	profiledomain.Service
	profile *profiledomain.Profile
	err     error
}

func (s *stubProfiles) Load(context.Context, snowflake.ID) (*profiledomain.Profile, error) {
	return s.profile, s.err
}

type stubStores struct {
	storedomain.Service
	scope *storedomain.StoreScope
	err   error
}

func (s *stubStores) ResolveScope(context.Context, *profiledomain.Profile) (*storedomain.StoreScope, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.scope, nil
}

type stubDepartments struct {
	departmentdomain.Service
	grantScoped []departmentdomain.Department
	byStore     map[snowflake.ID][]departmentdomain.Department
}

func (s *stubDepartments) ResolveScope(_ context.Context, profile *profiledomain.Profile, storeID snowflake.ID) ([]departmentdomain.Department, error) {
	if profile.GrantScopedDepartments() {
		return s.grantScoped, nil
	}
	return s.byStore[storeID], nil
}

type stubLoader struct {
	mu    sync.Mutex
	calls []snowflake.ID
	data  *domain.DependentData
	err   error
}

func (s *stubLoader) Load(_ context.Context, _, departmentID snowflake.ID) (*domain.DependentData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, departmentID)
	if s.err != nil {
		return nil, s.err
	}
	if s.data != nil {
		data := *s.data
		return &data, nil
	}
	return &domain.DependentData{KPIDefinitions: 3, OpenGoals: 1, OpenTasks: 2}, nil
}

func (s *stubLoader) setData(data *domain.DependentData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
}

func (s *stubLoader) loaded() []snowflake.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]snowflake.ID(nil), s.calls...)
}

type fixture struct {
	manager *Manager
	hints   *repository.MemoryHintStore
	loader  *stubLoader
}

func newFixture(profile *profiledomain.Profile, scope *storedomain.StoreScope, departments *stubDepartments) *fixture {
	hints := repository.NewMemoryHintStore()
	loader := &stubLoader{}
	manager := NewManager(
		zap.NewNop(),
		nil,
		&stubProfiles{profile: profile},
		&stubStores{scope: scope},
		departments,
		hints,
		loader,
	)
	return &fixture{manager: manager, hints: hints, loader: loader}
}

func gmFixture() *fixture {
	return newFixture(
		&profiledomain.Profile{UserID: userID, Role: profiledomain.RoleStoreGM},
		&storedomain.StoreScope{Stores: []storedomain.Store{storeOne, storeTwo}, CanSwitch: true},
		&stubDepartments{byStore: map[snowflake.ID][]departmentdomain.Department{
			storeOne.ID: {deptOneSales, deptOneService},
			storeTwo.ID: {deptTwoService},
		}},
	)
}

func TestSignInReachesReadyWithDefaults(t *testing.T) {
	f := gmFixture()

	coordinator, err := f.manager.ForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to sign in: %v", err)
	}

	snapshot := coordinator.Snapshot()
	if snapshot.State.Phase != domain.PhaseReady {
		t.Fatalf("expected ready, got %s", snapshot.State.Phase)
	}
	if snapshot.State.ActiveStoreID != storeOne.ID {
		t.Fatalf("expected first store active, got %s", snapshot.State.ActiveStoreID)
	}
	if snapshot.State.ActiveDepartmentID != deptOneService.ID {
		t.Fatalf("expected service department active, got %s", snapshot.State.ActiveDepartmentID)
	}
	if snapshot.State.Switching {
		t.Fatal("expected switching lowered after sign-in settles")
	}
	if snapshot.Data == nil || snapshot.Data.KPIDefinitions != 3 {
		t.Fatalf("expected dependent data loaded, got %+v", snapshot.Data)
	}

	hint, err := f.hints.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to read hints: %v", err)
	}
	if hint.StoreID != storeOne.ID.String() || hint.DepartmentID != deptOneService.ID.String() {
		t.Fatalf("expected hints persisted, got %+v", hint)
	}
}

func TestSelectStoreCascadesAndPersists(t *testing.T) {
	f := gmFixture()
	coordinator, err := f.manager.ForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to sign in: %v", err)
	}

	if err := coordinator.SelectStore(context.Background(), storeTwo.ID); err != nil {
		t.Fatalf("failed to select store: %v", err)
	}

	snapshot := coordinator.Snapshot()
	if snapshot.State.ActiveStoreID != storeTwo.ID {
		t.Fatalf("expected store two active, got %s", snapshot.State.ActiveStoreID)
	}
	if snapshot.State.ActiveDepartmentID != deptTwoService.ID {
		t.Fatalf("expected store two service department, got %s", snapshot.State.ActiveDepartmentID)
	}
	if snapshot.State.Switching {
		t.Fatal("expected switching lowered once the new department settled")
	}

	hint, _ := f.hints.Get(context.Background(), userID)
	if hint.StoreID != storeTwo.ID.String() {
		t.Fatalf("expected store hint overwritten, got %q", hint.StoreID)
	}
}

func TestHintRestoredOnNextSession(t *testing.T) {
	f := gmFixture()
	coordinator, err := f.manager.ForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to sign in: %v", err)
	}
	if err := coordinator.SelectStore(context.Background(), storeTwo.ID); err != nil {
		t.Fatalf("failed to select store: %v", err)
	}

	f.manager.Drop(context.Background(), userID)

	coordinator, err = f.manager.ForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to sign in again: %v", err)
	}
	snapshot := coordinator.Snapshot()
	if snapshot.State.ActiveStoreID != storeTwo.ID {
		t.Fatalf("expected hinted store restored, got %s", snapshot.State.ActiveStoreID)
	}
}

func TestSelectStoreOutsideScopeRejected(t *testing.T) {
	f := gmFixture()
	coordinator, err := f.manager.ForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to sign in: %v", err)
	}

	err = coordinator.SelectStore(context.Background(), snowflake.ID(999))
	if !errors.Is(err, domain.ErrStoreNotInScope) {
		t.Fatalf("expected ErrStoreNotInScope, got %v", err)
	}
}

func TestGrantScopedCrossStoreDepartmentExcluded(t *testing.T) {
	homeID := storeOne.ID
	f := newFixture(
		&profiledomain.Profile{UserID: userID, Role: profiledomain.RoleDepartmentManager, StoreID: &homeID},
		&storedomain.StoreScope{Stores: []storedomain.Store{storeOne}, CanSwitch: false},
		&stubDepartments{grantScoped: []departmentdomain.Department{deptOneSales, deptTwoService}},
	)

	coordinator, err := f.manager.ForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to sign in: %v", err)
	}

	snapshot := coordinator.Snapshot()
	if len(snapshot.State.CandidateStores) != 1 || snapshot.State.CandidateStores[0].ID != storeOne.ID {
		t.Fatalf("expected home store only, got %+v", snapshot.State.CandidateStores)
	}
	// The grant in the other store resolves but never survives validation.
	for _, department := range snapshot.State.CandidateDepartments {
		if department.ID == deptTwoService.ID {
			t.Fatal("cross-store grant leaked into candidate departments")
		}
	}
	if snapshot.State.ActiveDepartmentID != deptOneSales.ID {
		t.Fatalf("expected in-store grant active, got %s", snapshot.State.ActiveDepartmentID)
	}

	err = coordinator.SelectDepartment(context.Background(), deptTwoService.ID)
	if !errors.Is(err, domain.ErrDepartmentNotInScope) {
		t.Fatalf("expected ErrDepartmentNotInScope, got %v", err)
	}
}

func TestRealtimeReloadLeavesSelectionAlone(t *testing.T) {
	f := gmFixture()
	coordinator, err := f.manager.ForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to sign in: %v", err)
	}
	before := coordinator.Snapshot()

	coordinator.ReloadDependentData(context.Background())

	after := coordinator.Snapshot()
	if after.State.ActiveStoreID != before.State.ActiveStoreID ||
		after.State.ActiveDepartmentID != before.State.ActiveDepartmentID {
		t.Fatal("reload must not touch selection")
	}
	if calls := f.loader.loaded(); len(calls) != 2 {
		t.Fatalf("expected a second load for the active department, got %d", len(calls))
	}
}

func TestLoaderFailureStillSettles(t *testing.T) {
	f := gmFixture()
	f.loader.err = errors.New("kpi query failed")

	coordinator, err := f.manager.ForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to sign in: %v", err)
	}

	snapshot := coordinator.Snapshot()
	if snapshot.State.Switching {
		t.Fatal("a failed load must still lower switching")
	}
	if snapshot.Data != nil {
		t.Fatal("expected no data after failed load")
	}
	if snapshot.State.ActiveDepartmentID == 0 {
		t.Fatal("a failed load must not clear the selection")
	}
}

func TestProfileFailureSurfacesAndRetries(t *testing.T) {
	hints := repository.NewMemoryHintStore()
	profiles := &stubProfiles{err: profiledomain.ErrProfileUnavailable}
	manager := NewManager(
		zap.NewNop(),
		nil,
		profiles,
		&stubStores{scope: &storedomain.StoreScope{Stores: []storedomain.Store{storeOne}}},
		&stubDepartments{byStore: map[snowflake.ID][]departmentdomain.Department{
			storeOne.ID: {deptOneService},
		}},
		hints,
		&stubLoader{},
	)

	if _, err := manager.ForUser(context.Background(), userID); !errors.Is(err, domain.ErrProfileUnavailable) {
		t.Fatalf("expected ErrProfileUnavailable, got %v", err)
	}

	// The next attempt retries profile load from scratch.
	profiles.err = nil
	profiles.profile = &profiledomain.Profile{UserID: userID, Role: profiledomain.RoleStoreGM}
	coordinator, err := manager.ForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if coordinator.Snapshot().State.Phase != domain.PhaseReady {
		t.Fatal("expected ready after retry")
	}
}
