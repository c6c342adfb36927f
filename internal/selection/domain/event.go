package domain

import (
	"github.com/bwmarrin/snowflake"
	departmentdomain "github.com/pitlane-hq/pitlane/internal/department/domain"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	storedomain "github.com/pitlane-hq/pitlane/internal/store/domain"
)

// Event is an input to the selection machine. Events from asynchronous work
// carry the Epoch the work was requested under; the reducer discards results
// whose epoch has been superseded.
type Event interface{ isEvent() }

type SignedIn struct {
	UserID snowflake.ID
}

type ProfileLoaded struct {
	Profile *profiledomain.Profile
}

type ProfileFailed struct {
	Err error
}

// StoresResolved delivers the store scope together with the persisted store
// hint. The hint is raw untrusted text from storage; the reducer validates
// it against the candidate set before any use.
type StoresResolved struct {
	Epoch uint64
	Scope storedomain.StoreScope
	Hint  string
}

type StoresFailed struct {
	Epoch uint64
	Err   error
}

// DepartmentsResolved delivers the department candidate set together with
// the persisted department hint, again as raw untrusted text.
type DepartmentsResolved struct {
	Epoch       uint64
	Departments []departmentdomain.Department
	Hint        string
}

type DepartmentsFailed struct {
	Epoch uint64
	Err   error
}

// DependentDataSettled reports that the dependent-data loads issued for the
// given epoch have all completed, successfully or not.
type DependentDataSettled struct {
	Epoch uint64
}

type PickStore struct {
	StoreID snowflake.ID
}

type PickDepartment struct {
	DepartmentID snowflake.ID
}

// RefreshScope re-runs store resolution from Ready, keeping existing
// selection state until fresh results arrive.
type RefreshScope struct{}

type SignOut struct{}

func (SignedIn) isEvent()             {}
func (ProfileLoaded) isEvent()        {}
func (ProfileFailed) isEvent()        {}
func (StoresResolved) isEvent()       {}
func (StoresFailed) isEvent()         {}
func (DepartmentsResolved) isEvent()  {}
func (DepartmentsFailed) isEvent()    {}
func (DependentDataSettled) isEvent() {}
func (PickStore) isEvent()            {}
func (PickDepartment) isEvent()       {}
func (RefreshScope) isEvent()         {}
func (SignOut) isEvent()              {}
