package service

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
	departmentdomain "github.com/pitlane-hq/pitlane/internal/department/domain"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	"github.com/pitlane-hq/pitlane/internal/selection/domain"
	storedomain "github.com/pitlane-hq/pitlane/internal/store/domain"
	"go.uber.org/zap"
)

// Coordinator owns one user's selection state. Events are dispatched under
// a single mutex, so reductions and their effects run strictly in order: the
// machine sees a serialized event stream even when handlers race.
type Coordinator struct {
	mu      sync.Mutex
	machine *domain.Machine
	state   domain.State
	data    *domain.DependentData

	userID      snowflake.ID
	log         *zap.Logger
	profiles    profiledomain.Service
	stores      storedomain.Service
	departments departmentdomain.Service
	hints       domain.HintStore
	loader      domain.DependentLoader
}

// Snapshot is a read-only copy of the coordinator's state for handlers.
type Snapshot struct {
	State domain.State
	Data  *domain.DependentData
}

func newCoordinator(
	userID snowflake.ID,
	log *zap.Logger,
	machine *domain.Machine,
	profiles profiledomain.Service,
	stores storedomain.Service,
	departments departmentdomain.Service,
	hints domain.HintStore,
	loader domain.DependentLoader,
) *Coordinator {
	return &Coordinator{
		machine:     machine,
		state:       domain.NewState(),
		userID:      userID,
		log:         log.Named("selection.coordinator").With(zap.Stringer("user_id", userID)),
		profiles:    profiles,
		stores:      stores,
		departments: departments,
		hints:       hints,
		loader:      loader,
	}
}

// SignIn drives the machine from signed-out through profile load, store
// resolution, and department resolution. On return the state is either
// Ready or Failed.
func (c *Coordinator) SignIn(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatch(ctx, domain.SignedIn{UserID: c.userID})
	if c.state.Phase == domain.PhaseFailed {
		return domain.ErrProfileUnavailable
	}
	return nil
}

// SelectStore activates a store from the candidate set. Reselecting the
// active store is a no-op.
func (c *Coordinator) SelectStore(ctx context.Context, storeID snowflake.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != domain.PhaseReady {
		return domain.ErrNotReady
	}
	if storeID == c.state.ActiveStoreID {
		return nil
	}
	if !c.state.CanSwitchStores {
		return domain.ErrSwitchNotAllowed
	}
	if !scopeContainsStore(c.state.CandidateStores, storeID) {
		return domain.ErrStoreNotInScope
	}
	c.dispatch(ctx, domain.PickStore{StoreID: storeID})
	return nil
}

// SelectDepartment activates a department from the validated candidate set.
func (c *Coordinator) SelectDepartment(ctx context.Context, departmentID snowflake.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != domain.PhaseReady {
		return domain.ErrNotReady
	}
	if departmentID == c.state.ActiveDepartmentID {
		return nil
	}
	if !scopeContainsDepartment(c.state.CandidateDepartments, departmentID) {
		return domain.ErrDepartmentNotInScope
	}
	c.dispatch(ctx, domain.PickDepartment{DepartmentID: departmentID})
	return nil
}

// Refresh re-runs scope resolution, keeping current selections until fresh
// results land. This is the retry affordance after a resolution failure and
// the path an admin grant change takes effect through.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != domain.PhaseReady {
		return domain.ErrNotReady
	}
	c.dispatch(ctx, domain.RefreshScope{})
	return nil
}

// ReloadDependentData re-runs only the dependent reads for the active
// department, leaving selection untouched. Realtime change notifications
// land here, never in the selection machinery.
func (c *Coordinator) ReloadDependentData(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != domain.PhaseReady || c.state.ActiveDepartmentID == 0 {
		return
	}
	settled := c.runLoader(ctx, domain.EffectLoadDependentData{
		Epoch:        c.state.Epoch,
		StoreID:      c.state.ActiveStoreID,
		DepartmentID: c.state.ActiveDepartmentID,
	})
	c.dispatch(ctx, settled)
}

func (c *Coordinator) SignOut(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatch(ctx, domain.SignOut{})
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, Data: c.data}
}

// dispatch applies an event and drains the effect queue. Caller holds c.mu.
func (c *Coordinator) dispatch(ctx context.Context, ev domain.Event) {
	queue := []domain.Event{ev}
	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]
		next, effects := c.machine.Reduce(c.state, head)
		c.state = next
		for _, effect := range effects {
			if out := c.execute(ctx, effect); out != nil {
				queue = append(queue, out)
			}
		}
	}
}

// execute runs one effect and returns the follow-up event, if any.
func (c *Coordinator) execute(ctx context.Context, effect domain.Effect) domain.Event {
	switch effect := effect.(type) {
	case domain.EffectLoadProfile:
		profile, err := c.profiles.Load(ctx, effect.UserID)
		if err != nil {
			c.log.Error("load profile", zap.Error(err))
			return domain.ProfileFailed{Err: err}
		}
		return domain.ProfileLoaded{Profile: profile}

	case domain.EffectResolveStores:
		scope, err := c.stores.ResolveScope(ctx, c.state.Profile)
		if err != nil {
			return domain.StoresFailed{Epoch: effect.Epoch, Err: err}
		}
		hint, err := c.hints.Get(ctx, c.userID)
		if err != nil {
			c.log.Warn("read store hint", zap.Error(err))
			hint = domain.SelectionHint{}
		}
		return domain.StoresResolved{Epoch: effect.Epoch, Scope: *scope, Hint: hint.StoreID}

	case domain.EffectResolveDepartments:
		departments, err := c.departments.ResolveScope(ctx, c.state.Profile, effect.StoreID)
		if err != nil {
			return domain.DepartmentsFailed{Epoch: effect.Epoch, Err: err}
		}
		hint, err := c.hints.Get(ctx, c.userID)
		if err != nil {
			c.log.Warn("read department hint", zap.Error(err))
			hint = domain.SelectionHint{}
		}
		return domain.DepartmentsResolved{Epoch: effect.Epoch, Departments: departments, Hint: hint.DepartmentID}

	case domain.EffectLoadDependentData:
		return c.runLoader(ctx, effect)

	case domain.EffectClearDependentData:
		c.data = nil
		return nil

	case domain.EffectPersistStoreHint:
		if err := c.hints.SetStore(ctx, c.userID, effect.StoreID.String()); err != nil {
			c.log.Warn("persist store hint", zap.Error(err))
		}
		return nil

	case domain.EffectClearStoreHint:
		if err := c.hints.ClearStore(ctx, c.userID); err != nil {
			c.log.Warn("clear store hint", zap.Error(err))
		}
		return nil

	case domain.EffectPersistDepartmentHint:
		if err := c.hints.SetDepartment(ctx, c.userID, effect.DepartmentID.String()); err != nil {
			c.log.Warn("persist department hint", zap.Error(err))
		}
		return nil

	case domain.EffectClearDepartmentHint:
		if err := c.hints.ClearDepartment(ctx, c.userID); err != nil {
			c.log.Warn("clear department hint", zap.Error(err))
		}
		return nil
	}
	return nil
}

// runLoader performs the dependent reads and stages the result, keeping it
// only if the epoch is still current when the load returns. A failed load
// stays localized: the panels render empty, the flag still lowers.
func (c *Coordinator) runLoader(ctx context.Context, effect domain.EffectLoadDependentData) domain.Event {
	data, err := c.loader.Load(ctx, effect.StoreID, effect.DepartmentID)
	if err != nil {
		c.log.Error("load dependent data",
			zap.Stringer("department_id", effect.DepartmentID), zap.Error(err))
		data = nil
	}
	if effect.Epoch == c.state.Epoch {
		c.data = data
	}
	return domain.DependentDataSettled{Epoch: effect.Epoch}
}

func scopeContainsStore(stores []storedomain.Store, id snowflake.ID) bool {
	for i := range stores {
		if stores[i].ID == id {
			return true
		}
	}
	return false
}

func scopeContainsDepartment(departments []departmentdomain.Department, id snowflake.ID) bool {
	for i := range departments {
		if departments[i].ID == id {
			return true
		}
	}
	return false
}
