package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kollab_agentic/backend/internal/config"
	"github.com/kollab_agentic/backend/internal/http/handlers"
	"github.com/kollab_agentic/backend/internal/http/middleware"
	"github.com/kollab_agentic/backend/internal/llm"
	"github.com/kollab_agentic/backend/internal/store"

	_ "github.com/kollab_agentic/backend/docs"
)

func Router(cfg config.Config, st *store.Store, completer llm.Completer, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
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
		Store:         st,
		Completer:     completer,
		Validator:     validator.New(),
		Logger:        logger,
		AdminKey:      cfg.AdminKey,
		ContextBudget: cfg.ContextCharBudget,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/companies/:company_id/tickets", h.TicketsList)
		api.GET("/companies/:company_id/tickets/:ticket_id", h.TicketDetails)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/analyze", h.Analyze)
		admin.POST("/connectors/fetch", h.ConnectorsFetch)
		admin.POST("/task-status", h.TaskStatus)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
