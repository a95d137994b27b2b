package server

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ringside/boxclub-api/internal/handler"
	"github.com/ringside/boxclub-api/internal/middleware"
	"github.com/ringside/boxclub-api/internal/models"
	"github.com/ringside/boxclub-api/internal/repository"
	"github.com/ringside/boxclub-api/internal/service"
	"github.com/ringside/boxclub-api/pkg/config"
	"github.com/ringside/boxclub-api/pkg/logger"
	"github.com/ringside/boxclub-api/pkg/middleware/cors"
	"github.com/ringside/boxclub-api/pkg/middleware/requestid"
)

// Server bundles the router with its configuration.
type Server struct {
	Config *config.Config
	Router *gin.Engine

	auth *service.AuthService
}

// New assembles repositories, services and handlers and mounts the routes.
func New(cfg *config.Config, db *sqlx.DB, cache *redis.Client, log *zap.Logger) *Server {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	s := &Server{Config: cfg, Router: engine}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	gymRepo := repository.NewGymRepository(db)
	boxerRepo := repository.NewBoxerRepository(db)
	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	weightRepo := repository.NewWeightRepository(db)
	batteryRepo := repository.NewBatteryRepository(db)
	heartRateRepo := repository.NewHeartRateRepository(db)

	scopeSvc := service.NewScopeService(boxerRepo, userRepo, log)
	s.auth = service.NewAuthService(userRepo, gymRepo, boxerRepo, validate, log, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		DefaultGymName:     cfg.Club.DefaultGymName,
		DefaultGymTimezone: cfg.Club.DefaultGymTimezone,
	})
	gymSvc := service.NewGymService(gymRepo, validate, log)
	boxerSvc := service.NewBoxerService(boxerRepo, scopeSvc, validate, log)
	classSvc := service.NewClassService(classRepo, enrollmentRepo, attendanceRepo, scopeSvc, validate, log, service.CalendarConfig{
		DefaultStartHour:       cfg.Calendar.DefaultStartHour,
		DefaultStartMinute:     cfg.Calendar.DefaultStartMinute,
		DefaultDurationMinutes: cfg.Calendar.DefaultDurationMinutes,
		MaxWindowDays:          cfg.Calendar.MaxWindowDays,
	})
	rosterSvc := service.NewRosterService(enrollmentRepo, classRepo, scopeSvc, validate, log)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, weightRepo, classRepo, scopeSvc, cache, validate, log, service.AttendanceConfig{
		WeightHour:   cfg.Attendance.WeightHour,
		WeightMinute: cfg.Attendance.WeightMinute,
		CacheEnabled: cfg.Summaries.CacheEnabled,
		CacheTTL:     cfg.Summaries.CacheTTL,
	})
	performanceSvc := service.NewPerformanceService(batteryRepo, boxerRepo, scopeSvc, validate, log)
	weightSvc := service.NewWeightService(weightRepo, scopeSvc, validate, log)
	heartRateSvc := service.NewHeartRateService(heartRateRepo, scopeSvc, validate, log)
	reportSvc := service.NewReportService(attendanceRepo, weightRepo, enrollmentRepo, scopeSvc, log)

	authHandler := handler.NewAuthHandler(s.auth)
	gymHandler := handler.NewGymHandler(gymSvc)
	boxerHandler := handler.NewBoxerHandler(boxerSvc)
	classHandler := handler.NewClassHandler(classSvc, rosterSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, metricsSvc)
	performanceHandler := handler.NewPerformanceHandler(performanceSvc)
	vitalsHandler := handler.NewVitalsHandler(weightSvc, heartRateSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	s.mountMiddlewares(log, metricsSvc)
	s.mountRoutes(authHandler, gymHandler, boxerHandler, classHandler, attendanceHandler, performanceHandler, vitalsHandler, reportHandler, metricsHandler)

	return s
}

func (s *Server) mountMiddlewares(log *zap.Logger, metricsSvc *service.MetricsService) {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.Middleware())
	s.Router.Use(logger.GinMiddleware(log))
	s.Router.Use(cors.New(s.Config.CORS.AllowedOrigins))
	s.Router.Use(middleware.Metrics(metricsSvc))
}

func (s *Server) mountRoutes(
	authHandler *handler.AuthHandler,
	gymHandler *handler.GymHandler,
	boxerHandler *handler.BoxerHandler,
	classHandler *handler.ClassHandler,
	attendanceHandler *handler.AttendanceHandler,
	performanceHandler *handler.PerformanceHandler,
	vitalsHandler *handler.VitalsHandler,
	reportHandler *handler.ReportHandler,
	metricsHandler *handler.MetricsHandler,
) {
	s.Router.GET("/health", metricsHandler.Health)
	s.Router.GET("/ready", metricsHandler.Ready)
	s.Router.GET("/metrics", metricsHandler.Prometheus)

	api := s.Router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/register/coach", authHandler.RegisterCoach)
		auth.POST("/register/parent", authHandler.ParentSignup)
	}

	authed := api.Group("", middleware.JWT(s.auth))
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleCoach)
	admin := middleware.RequireRoles(models.RoleAdmin)

	gyms := authed.Group("/gyms")
	{
		gyms.GET("", gymHandler.List)
		gyms.GET("/:id", gymHandler.Get)
		gyms.POST("", admin, gymHandler.Create)
		gyms.DELETE("/:id", admin, gymHandler.Delete)
	}

	boxers := authed.Group("/boxers")
	{
		boxers.GET("", boxerHandler.List)
		boxers.GET("/:ref", boxerHandler.Get)
		boxers.POST("", staff, boxerHandler.Create)
		boxers.POST("/bulk", staff, boxerHandler.BulkImport)
		boxers.POST("/:ref/share", staff, boxerHandler.Share)
		boxers.DELETE("/:ref", staff, boxerHandler.Delete)
	}

	classes := authed.Group("/classes")
	{
		classes.GET("", classHandler.List)
		classes.GET("/:id", classHandler.Get)
		classes.POST("", staff, classHandler.Create)
		classes.DELETE("/:id", staff, classHandler.Delete)
		classes.GET("/:id/roster", classHandler.Roster)
		classes.POST("/:id/roster", staff, classHandler.Enroll)
		classes.DELETE("/:id/roster/:boxerId", staff, classHandler.Unenroll)
	}
	authed.GET("/calendar", classHandler.Calendar)

	attendance := authed.Group("/attendance")
	{
		attendance.GET("", attendanceHandler.List)
		attendance.POST("", staff, attendanceHandler.Mark)
		attendance.POST("/batch", staff, attendanceHandler.BatchMark)
		attendance.POST("/sweep", staff, attendanceHandler.SweepAbsent)
		attendance.GET("/summary/:boxerId", attendanceHandler.Summary)
	}

	tests := authed.Group("/tests")
	{
		tests.GET("", performanceHandler.ListTests)
		tests.POST("", staff, performanceHandler.CreateTest)
		tests.DELETE("/:id", staff, performanceHandler.DeleteTest)
		tests.POST("/results", staff, performanceHandler.RecordResult)
		tests.GET("/:id/ranking", performanceHandler.Ranking)
		tests.GET("/:id/boxers/:boxerId/best", performanceHandler.BestResult)
		tests.GET("/:id/boxers/:boxerId/improvement", performanceHandler.Improvement)
		tests.DELETE("/:id/boxers/:boxerId/results", staff, performanceHandler.DeleteResult)
	}

	vitals := authed.Group("")
	{
		vitals.POST("/weights", staff, vitalsHandler.RecordWeight)
		vitals.GET("/boxers/:ref/weight/latest", vitalsHandler.LatestWeight)
		vitals.GET("/boxers/:ref/weight/progress", vitalsHandler.WeightProgress)
		vitals.POST("/heart-rates", staff, vitalsHandler.RecordHeartRate)
		vitals.GET("/boxers/:ref/heart-rates", vitalsHandler.HeartRateHistory)
		vitals.GET("/heart-rates/latest", vitalsHandler.HeartRateLatest)
	}

	reports := authed.Group("/reports")
	{
		reports.GET("/boxers/:boxerId", reportHandler.BoxerReport)
		reports.GET("/attendance", reportHandler.AttendanceExport)
	}
}
