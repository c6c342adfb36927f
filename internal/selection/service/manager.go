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

// Manager hands out one Coordinator per signed-in user and tears it down on
// sign-out. Coordinators are created lazily on first use.
type Manager struct {
	mu       sync.Mutex
	sessions map[snowflake.ID]*Coordinator

	log         *zap.Logger
	machine     *domain.Machine
	profiles    profiledomain.Service
	stores      storedomain.Service
	departments departmentdomain.Service
	hints       domain.HintStore
	loader      domain.DependentLoader
}

// NewManager builds the session registry. A nil policy falls back to the
// service-first default.
func NewManager(
	log *zap.Logger,
	policy domain.DefaultPolicy,
	profiles profiledomain.Service,
	stores storedomain.Service,
	departments departmentdomain.Service,
	hints domain.HintStore,
	loader domain.DependentLoader,
) *Manager {
	machine := domain.NewMachine()
	if policy != nil {
		machine.Policy = policy
	}
	return &Manager{
		sessions:    make(map[snowflake.ID]*Coordinator),
		log:         log,
		machine:     machine,
		profiles:    profiles,
		stores:      stores,
		departments: departments,
		hints:       hints,
		loader:      loader,
	}
}

// ForUser returns the user's coordinator, signing it in on first use. A
// profile load failure is terminal for the attempt but not for the session
// registry: the next call retries from scratch.
func (m *Manager) ForUser(ctx context.Context, userID snowflake.ID) (*Coordinator, error) {
	m.mu.Lock()
	coordinator, ok := m.sessions[userID]
	if !ok {
		coordinator = newCoordinator(userID, m.log, m.machine, m.profiles, m.stores, m.departments, m.hints, m.loader)
		m.sessions[userID] = coordinator
	}
	m.mu.Unlock()

	snapshot := coordinator.Snapshot()
	if snapshot.State.Phase == domain.PhaseUnauthenticated || snapshot.State.Phase == domain.PhaseFailed {
		if err := coordinator.SignIn(ctx); err != nil {
			return nil, err
		}
	}
	return coordinator, nil
}

// ReloadFor re-runs the dependent loaders of every ready session whose
// active scope matches the changed record. A zero departmentID matches any
// department in the store, covering store-wide records.
func (m *Manager) ReloadFor(ctx context.Context, storeID, departmentID snowflake.ID) {
	m.mu.Lock()
	sessions := make([]*Coordinator, 0, len(m.sessions))
	for _, coordinator := range m.sessions {
		sessions = append(sessions, coordinator)
	}
	m.mu.Unlock()

	for _, coordinator := range sessions {
		snapshot := coordinator.Snapshot()
		if snapshot.State.Phase != domain.PhaseReady {
			continue
		}
		if snapshot.State.ActiveStoreID != storeID {
			continue
		}
		if departmentID != 0 && snapshot.State.ActiveDepartmentID != departmentID {
			continue
		}
		coordinator.ReloadDependentData(ctx)
	}
}

// Drop signs the user's coordinator out and forgets it.
func (m *Manager) Drop(ctx context.Context, userID snowflake.ID) {
	m.mu.Lock()
	coordinator, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if ok {
		coordinator.SignOut(ctx)
	}
}

// Invalidate forces the user's next request to re-resolve scope, used after
// an admin changes grants or profile attributes.
func (m *Manager) Invalidate(userID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
