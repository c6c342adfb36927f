package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	departmentdomain "github.com/pitlane-hq/pitlane/internal/department/domain"
	selectiondomain "github.com/pitlane-hq/pitlane/internal/selection/domain"
	selectionservice "github.com/pitlane-hq/pitlane/internal/selection/service"
	storedomain "github.com/pitlane-hq/pitlane/internal/store/domain"
)

type SelectRequest struct {
	ID string `json:"id"`
}

type selectionView struct {
	Phase                string                        `json:"phase"`
	CandidateStores      []storedomain.Store           `json:"candidate_stores"`
	CanSwitchStores      bool                          `json:"can_switch_stores"`
	CandidateDepartments []departmentdomain.Department `json:"candidate_departments"`
	ActiveStoreID        string                        `json:"active_store_id,omitempty"`
	ActiveDepartmentID   string                        `json:"active_department_id,omitempty"`
	Switching            bool                          `json:"switching"`
	LastError            string                        `json:"last_error,omitempty"`
}

func newSelectionView(snapshot selectionservice.Snapshot) selectionView {
	state := snapshot.State
	view := selectionView{
		Phase:                string(state.Phase),
		CandidateStores:      state.CandidateStores,
		CanSwitchStores:      state.CanSwitchStores,
		CandidateDepartments: state.CandidateDepartments,
		Switching:            state.Switching,
		LastError:            state.LastError,
	}
	if state.ActiveStoreID != 0 {
		view.ActiveStoreID = state.ActiveStoreID.String()
	}
	if state.ActiveDepartmentID != 0 {
		view.ActiveDepartmentID = state.ActiveDepartmentID.String()
	}
	return view
}

func (s *Server) GetSelection(c *gin.Context) {
	coordinator, err := s.coordinator(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSelectionView(coordinator.Snapshot()))
}

func (s *Server) SelectStore(c *gin.Context) {
	coordinator, id, err := s.coordinatorAndID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := coordinator.SelectStore(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSelectionView(coordinator.Snapshot()))
}

func (s *Server) SelectDepartment(c *gin.Context) {
	coordinator, id, err := s.coordinatorAndID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := coordinator.SelectDepartment(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSelectionView(coordinator.Snapshot()))
}

func (s *Server) RefreshSelection(c *gin.Context) {
	coordinator, err := s.coordinator(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := coordinator.Refresh(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSelectionView(coordinator.Snapshot()))
}

// Dashboard returns the dependent data for the active department along with
// the selection it was loaded for.
func (s *Server) Dashboard(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := snapshot.Data
	if data == nil {
		data = &selectiondomain.DependentData{}
	}
	c.JSON(http.StatusOK, gin.H{
		"selection": newSelectionView(snapshot),
		"data":      data,
	})
}

func (s *Server) coordinatorAndID(c *gin.Context) (*selectionservice.Coordinator, snowflake.ID, error) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, 0, invalidRequestError()
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return nil, 0, newValidationError("id", "invalid_id", "invalid id")
	}
	coordinator, err := s.coordinator(c)
	if err != nil {
		return nil, 0, err
	}
	return coordinator, id, nil
}
