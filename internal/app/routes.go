package app

import (
	"net/http"

	_ "github.com/birlikkoshan/todo-api/docs"
	"github.com/birlikkoshan/todo-api/internal/config"
	"github.com/birlikkoshan/todo-api/internal/dto"
	"github.com/birlikkoshan/todo-api/internal/handlers"
	"github.com/birlikkoshan/todo-api/internal/service"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, todos *service.TodoService, logger *log.Logger) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg, todos, logger))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler(logger))
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	registerTodoRoutes(r, handlers.NewTodoHandler(todos, logger))
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "TODO API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"endpoints": gin.H{
				"docs":    "/swagger/index.html",
				"openapi": "/swagger-doc.json",
				"health":  "/health",
				"todos":   "/todos",
			},
		})
	}
}

// healthHandler godoc
// @Summary      Liveness check
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /health [get]
func healthHandler(cfg config.Config, todos *service.TodoService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := todos.Count(c.Request.Context())
		if err != nil {
			logger.Error("health count failed", "err", err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: "internal server error"})
			return
		}
		c.JSON(http.StatusOK, dto.HealthResponse{Status: "healthy", TotalTodos: n, Env: cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			logger.Error("read swagger doc", "err", err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: "internal server error"})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTodoRoutes(r gin.IRoutes, h *handlers.TodoHandler) {
	r.POST("/todos", h.Create)
	r.GET("/todos", h.List)
	r.GET("/todos/stats/summary", h.Stats)
	r.GET("/todos/:id", h.GetByID)
	r.PUT("/todos/:id", h.Update)
	r.DELETE("/todos/:id", h.Delete)
}
