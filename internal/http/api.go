package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tasktracker/internal/domain"
	"tasktracker/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users        service.UserService
	tasks        service.TaskService
	exports      service.ExportService
	allowOrigins []string
	logger       *logrus.Logger
}

func NewHandler(users service.UserService, tasks service.TaskService, exports service.ExportService, allowOrigins []string, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:        users,
		tasks:        tasks,
		exports:      exports,
		allowOrigins: allowOrigins,
		logger:       logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.corsMiddleware())

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Task Tracker backend is running")
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})

	api := router.Group("/api")
	{
		api.POST("/users", h.createUser)
		api.GET("/users", h.listUsers)

		api.POST("/tasks", h.createTask)
		api.GET("/tasks/:userId", h.listTasks)
		api.PUT("/tasks/:id", h.updateTask)
		api.DELETE("/tasks/:id", h.deleteTask)
		api.POST("/tasks/:userId/export", h.exportTasks)
		api.GET("/tasks/:userId/exports", h.listExports)

		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
		})
	}
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(h.allowOrigins) == 0 || (len(h.allowOrigins) == 1 && h.allowOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = h.allowOrigins
	}
	return cors.New(cfg)
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
	UserID      string  `json:"userId"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c)
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Role)
	if err != nil {
		h.fail(c, err, "Server error while creating user")
		return
	}

	h.logger.WithField("user_id", user.ID).Info("user registered")
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"user":    userToResponse(*user),
	})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch users")
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": resp})
}

func (h *Handler) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c)
		return
	}

	var due *time.Time
	if req.DueDate != nil {
		parsed, err := parseDueDate(*req.DueDate)
		if err != nil {
			h.fail(c, err, "Failed to create task")
			return
		}
		due = parsed
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), domain.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		DueDate:     due,
		UserID:      req.UserID,
	})
	if err != nil {
		h.fail(c, err, "Failed to create task")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Task added successfully",
		"task":    taskToResponse(*task),
	})
}

func (h *Handler) listTasks(c *gin.Context) {
	tasks, err := h.tasks.ListTasksForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err, "Failed to fetch tasks")
		return
	}

	resp := make([]TaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = taskToResponse(tasks[i])
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": resp})
}

func (h *Handler) updateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		h.fail(c, err, "Failed to update task")
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err, "Failed to update task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task updated successfully",
		"task":    taskToResponse(*task),
	})
}

func (h *Handler) deleteTask(c *gin.Context) {
	if err := h.tasks.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task deleted successfully"})
}

func (h *Handler) exportTasks(c *gin.Context) {
	exp, err := h.exports.Export(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err, "Failed to export tasks")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":  c.Param("userId"),
		"location": exp.Location,
		"tasks":    exp.TaskCount,
	}).Info("tasks exported")
	c.JSON(http.StatusCreated, gin.H{"success": true, "export": exportToResponse(*exp)})
}

func (h *Handler) listExports(c *gin.Context) {
	exports, err := h.exports.ListExports(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err, "Failed to fetch exports")
		return
	}

	resp := make([]ExportResponse, len(exports))
	for i := range exports {
		resp[i] = exportToResponse(exports[i])
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "exports": resp})
}

// fail maps service errors onto status codes; anything unclassified is logged
// and answered with the generic message.
func (h *Handler) fail(c *gin.Context, err error, generic string) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, service.ErrExportDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Task export is not configured"})
	default:
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error(strings.ToLower(generic))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": generic})
	}
}

func badRequestBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
}
