package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectStore      = "store"
	ObjectDepartment = "department"
	ObjectScorecard  = "scorecard"
	ObjectRock       = "rock"
	ObjectTodo       = "todo"
	ObjectIssue      = "issue"
	ObjectMeeting    = "meeting"
	ObjectDocument   = "document"
	ObjectSignature  = "signature"
	ObjectDirectory  = "directory"
)

const (
	ActionStoreView   = "store.view"
	ActionStoreManage = "store.manage"

	ActionDepartmentView   = "department.view"
	ActionDepartmentManage = "department.manage"

	ActionScorecardView   = "scorecard.view"
	ActionScorecardManage = "scorecard.manage"
	ActionScorecardRecord = "scorecard.record"

	ActionRockView   = "rock.view"
	ActionRockManage = "rock.manage"

	ActionTodoView   = "todo.view"
	ActionTodoManage = "todo.manage"

	ActionIssueView   = "issue.view"
	ActionIssueManage = "issue.manage"

	ActionMeetingView     = "meeting.view"
	ActionMeetingRun      = "meeting.run"
	ActionMeetingConclude = "meeting.conclude"

	ActionDocumentView   = "document.view"
	ActionDocumentManage = "document.manage"
	ActionSignatureSend  = "signature.send"
	ActionSignatureSign  = "signature.sign"

	ActionDirectoryView = "directory.view"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, storeID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return ErrInvalidStore
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, err := s.resolveActor(ctx, actor)
	if err != nil {
		return err
	}

	domain := fmt.Sprintf("store:%s", storeID)
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject),
			zap.String("store_id", storeID),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string) (string, string, error) {
	if actor == "system" {
		return actor, "role:system", nil
	}
	if strings.HasPrefix(actor, "user:") {
		userIDRaw := strings.TrimPrefix(actor, "user:")
		userID, err := snowflake.ParseString(userIDRaw)
		if err != nil || userID == 0 {
			return "", "", ErrInvalidActor
		}
		role, err := s.roleForUser(ctx, userID)
		if err != nil {
			return "", "", err
		}
		return actor, fmt.Sprintf("role:%s", strings.ToLower(role)), nil
	}
	return "", "", ErrInvalidActor
}

func (s *ServiceImpl) roleForUser(ctx context.Context, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM profiles
		 WHERE user_id = ?
		 LIMIT 1`,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

// ensureGrouping keeps exactly one role link per subject per store domain
// so that a role change takes effect on the next check.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	viewOnly := [][2]string{
		{ObjectStore, ActionStoreView},
		{ObjectDepartment, ActionDepartmentView},
		{ObjectScorecard, ActionScorecardView},
		{ObjectRock, ActionRockView},
		{ObjectTodo, ActionTodoView},
		{ObjectIssue, ActionIssueView},
		{ObjectMeeting, ActionMeetingView},
		{ObjectDocument, ActionDocumentView},
		{ObjectDirectory, ActionDirectoryView},
	}

	manage := [][2]string{
		{ObjectScorecard, ActionScorecardManage},
		{ObjectScorecard, ActionScorecardRecord},
		{ObjectRock, ActionRockManage},
		{ObjectTodo, ActionTodoManage},
		{ObjectIssue, ActionIssueManage},
		{ObjectMeeting, ActionMeetingRun},
		{ObjectMeeting, ActionMeetingConclude},
		{ObjectDocument, ActionDocumentManage},
		{ObjectSignature, ActionSignatureSend},
	}

	policies := make([][]string, 0, 128)

	appendFor := func(role string, pairs [][2]string) {
		for _, pair := range pairs {
			policies = append(policies, []string{role, pair[0], pair[1]})
		}
	}

	// Every authenticated role can read and sign what was sent to them.
	for _, role := range []string{
		"role:" + profiledomain.RoleGlobalAdmin,
		"role:" + profiledomain.RoleStoreGM,
		"role:" + profiledomain.RoleFixedOpsManager,
		"role:" + profiledomain.RoleDepartmentManager,
		"role:" + profiledomain.RoleOther,
	} {
		appendFor(role, viewOnly)
		policies = append(policies, []string{role, ObjectSignature, ActionSignatureSign})
	}

	// Managers run their departments.
	for _, role := range []string{
		"role:" + profiledomain.RoleGlobalAdmin,
		"role:" + profiledomain.RoleStoreGM,
		"role:" + profiledomain.RoleFixedOpsManager,
		"role:" + profiledomain.RoleDepartmentManager,
	} {
		appendFor(role, manage)
	}

	// Store and platform administration.
	for _, role := range []string{
		"role:" + profiledomain.RoleGlobalAdmin,
		"role:" + profiledomain.RoleStoreGM,
	} {
		policies = append(policies,
			[]string{role, ObjectStore, ActionStoreManage},
			[]string{role, ObjectDepartment, ActionDepartmentManage},
		)
	}

	// Automated processes.
	appendFor("role:system", viewOnly)
	appendFor("role:system", manage)
	policies = append(policies,
		[]string{"role:system", ObjectStore, ActionStoreManage},
		[]string{"role:system", ObjectDepartment, ActionDepartmentManage},
	)

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
