package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/pitlane-hq/pitlane/internal/authorization"
	"github.com/pitlane-hq/pitlane/internal/changefeed"
	"github.com/pitlane-hq/pitlane/internal/clock"
	"github.com/pitlane-hq/pitlane/internal/config"
	"github.com/pitlane-hq/pitlane/internal/observability"
	obslogger "github.com/pitlane-hq/pitlane/internal/observability/logger"
	obsmetrics "github.com/pitlane-hq/pitlane/internal/observability/metrics"
	obstracing "github.com/pitlane-hq/pitlane/internal/observability/tracing"
	"github.com/pitlane-hq/pitlane/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/pitlane-hq/pitlane/internal/auth/domain"
	"github.com/pitlane-hq/pitlane/internal/auth/session"
	departmentdomain "github.com/pitlane-hq/pitlane/internal/department/domain"
	directorydomain "github.com/pitlane-hq/pitlane/internal/directory/domain"
	documentdomain "github.com/pitlane-hq/pitlane/internal/document/domain"
	meetingdomain "github.com/pitlane-hq/pitlane/internal/meeting/domain"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	rocksdomain "github.com/pitlane-hq/pitlane/internal/rocks/domain"
	scorecarddomain "github.com/pitlane-hq/pitlane/internal/scorecard/domain"
	selectionservice "github.com/pitlane-hq/pitlane/internal/selection/service"
	storedomain "github.com/pitlane-hq/pitlane/internal/store/domain"
	todosdomain "github.com/pitlane-hq/pitlane/internal/todos/domain"
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	db            *gorm.DB
	genID         *snowflake.Node
	clock         clock.Clock
	authSvc       authdomain.Service
	sessions      *session.Manager
	loginLimiter  *ratelimit.LoginLimiter
	authzSvc      authorization.Service
	profileSvc    profiledomain.Service
	storeSvc      storedomain.Service
	departmentSvc departmentdomain.Service
	selections    *selectionservice.Manager
	scorecardSvc  scorecarddomain.Service
	rocksSvc      rocksdomain.Service
	todosSvc      todosdomain.Service
	meetingSvc    meetingdomain.Service
	documentSvc   documentdomain.Service
	directorySvc  directorydomain.Service
	feed          *changefeed.Hub
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	DB            *gorm.DB
	GenID         *snowflake.Node
	Clock         clock.Clock
	AuthSvc       authdomain.Service
	Sessions      *session.Manager
	LoginLimiter  *ratelimit.LoginLimiter `optional:"true"`
	AuthzSvc      authorization.Service
	ProfileSvc    profiledomain.Service
	StoreSvc      storedomain.Service
	DepartmentSvc departmentdomain.Service
	Selections    *selectionservice.Manager
	ScorecardSvc  scorecarddomain.Service
	RocksSvc      rocksdomain.Service
	TodosSvc      todosdomain.Service
	MeetingSvc    meetingdomain.Service
	DocumentSvc   documentdomain.Service
	DirectorySvc  directorydomain.Service
	Feed          *changefeed.Hub
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		db:            p.DB,
		genID:         p.GenID,
		clock:         p.Clock,
		authSvc:       p.AuthSvc,
		sessions:      p.Sessions,
		loginLimiter:  p.LoginLimiter,
		authzSvc:      p.AuthzSvc,
		profileSvc:    p.ProfileSvc,
		storeSvc:      p.StoreSvc,
		departmentSvc: p.DepartmentSvc,
		selections:    p.Selections,
		scorecardSvc:  p.ScorecardSvc,
		rocksSvc:      p.RocksSvc,
		todosSvc:      p.TodosSvc,
		meetingSvc:    p.MeetingSvc,
		documentSvc:   p.DocumentSvc,
		directorySvc:  p.DirectorySvc,
		feed:          p.Feed,
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1", s.AuthRequired())

	api.GET("/me", s.Me)
	api.PATCH("/me/profile", s.UpdateMyProfile)

	api.GET("/selection", s.GetSelection)
	api.POST("/selection/store", s.SelectStore)
	api.POST("/selection/department", s.SelectDepartment)
	api.POST("/selection/refresh", s.RefreshSelection)

	api.GET("/dashboard", s.Dashboard)
	api.GET("/stream/:recordType", s.StreamChanges)

	api.GET("/stores", s.ListStores)
	api.POST("/stores", s.CreateStore)
	api.GET("/store-groups", s.ListStoreGroups)
	api.POST("/store-groups", s.CreateStoreGroup)
	api.POST("/stores/:id/grants/:userID", s.GrantStoreAccess)
	api.DELETE("/stores/:id/grants/:userID", s.RevokeStoreAccess)

	api.GET("/departments", s.ListDepartments)
	api.POST("/departments", s.CreateDepartment)
	api.PATCH("/departments/:id", s.UpdateDepartment)
	api.POST("/departments/:id/grants/:userID", s.GrantDepartmentAccess)
	api.DELETE("/departments/:id/grants/:userID", s.RevokeDepartmentAccess)

	api.GET("/scorecard", s.GetScorecard)
	api.POST("/kpi-definitions", s.CreateKPIDefinition)
	api.PATCH("/kpi-definitions/:id", s.UpdateKPIDefinition)
	api.DELETE("/kpi-definitions/:id", s.DeleteKPIDefinition)
	api.POST("/kpi-entries", s.RecordKPIEntry)

	api.GET("/rocks", s.ListRocks)
	api.POST("/rocks", s.CreateRock)
	api.PATCH("/rocks/:id", s.UpdateRock)
	api.DELETE("/rocks/:id", s.DeleteRock)

	api.GET("/todos", s.ListTodos)
	api.POST("/todos", s.CreateTodo)
	api.PATCH("/todos/:id", s.UpdateTodo)
	api.POST("/todos/:id/complete", s.CompleteTodo)
	api.POST("/todos/:id/reopen", s.ReopenTodo)
	api.DELETE("/todos/:id", s.DeleteTodo)

	api.GET("/meetings", s.ListMeetings)
	api.POST("/meetings", s.ScheduleMeeting)
	api.GET("/meetings/:id", s.GetMeeting)
	api.POST("/meetings/:id/start", s.StartMeeting)
	api.POST("/meetings/:id/advance", s.AdvanceMeeting)
	api.POST("/meetings/:id/rate", s.RateMeeting)
	api.POST("/meetings/:id/conclude", s.ConcludeMeeting)

	api.GET("/documents", s.ListDocuments)
	api.POST("/documents", s.CreateDocument)
	api.GET("/documents/:id", s.GetDocument)
	api.DELETE("/documents/:id", s.DeleteDocument)
	api.GET("/documents/:id/signatures", s.ListSignatures)
	api.POST("/documents/:id/signatures", s.CreateSignatureRequest)
	api.POST("/signatures/:envelopeID/send", s.SendSignatureRequest)
	api.POST("/signatures/:envelopeID/viewed", s.MarkSignatureViewed)
	api.POST("/signatures/:envelopeID/sign", s.SignSignatureRequest)
	api.POST("/signatures/:envelopeID/decline", s.DeclineSignatureRequest)

	api.GET("/directory", s.ListDirectory)
}

func Run(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: s.Engine(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
