package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/campusvoice/backend/internal/ai"
	"github.com/campusvoice/backend/internal/config"
	"github.com/campusvoice/backend/internal/db"
	"github.com/campusvoice/backend/internal/http/handlers"
	"github.com/campusvoice/backend/internal/http/middleware"
	"github.com/campusvoice/backend/internal/models"
	"github.com/campusvoice/backend/internal/service"

	_ "github.com/campusvoice/backend/docs"
)

func Router(cfg config.Config, store *db.Store, classifier ai.Classifier, grievances *service.GrievanceService, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id", "X-User-Id", "X-User-Role", "X-Department-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:      store,
		Grievances: grievances,
		Classifier: classifier,
		Validator:  validator.New(),
		Logger:     logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.Use(middleware.Identity())
	{
		api.POST("/classify", h.ClassifyPreview)
		api.POST("/grievances", h.GrievanceSubmit)
		api.GET("/grievances", h.GrievancesList)
		api.GET("/grievances/:id", h.GrievanceDetail)
		api.GET("/grievances/:id/logs", h.StatusLogsList)
		api.POST("/grievances/:id/status", h.StatusUpdate)
		api.GET("/departments", h.DepartmentsList)
		api.GET("/stats", h.StatsGet)
	}

	admin := api.Group("")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/grievances/:id/escalate", h.Escalate)
		admin.POST("/grievances/:id/category", h.CategoryCorrect)
		admin.POST("/departments", h.DepartmentCreate)
		admin.GET("/users", h.UsersList)
		admin.POST("/users", h.UserCreate)
		admin.GET("/training-data", h.TrainingDataList)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
