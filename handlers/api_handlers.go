package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"rollcall-attendance-go/attendance"
	"rollcall-attendance-go/logger"
	"rollcall-attendance-go/models"
)

const component = "api"

// APIHandler exposes the attendance session over a local JSON API
type APIHandler struct {
	Session *attendance.Session
	log     logger.Logger
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(session *attendance.Session, log logger.Logger) *APIHandler {
	return &APIHandler{
		Session: session,
		log:     log,
	}
}

// LoadClassRequest is the body of POST /api/classes
type LoadClassRequest struct {
	Name string `json:"name"`
	Path string `json:"path" binding:"required"`
}

// NewRouter wires every route onto a gin engine
func NewRouter(h *APIHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		// Class routes
		api.GET("/classes", h.GetAllClasses)
		api.POST("/classes", h.LoadClass)
		api.GET("/classes/:classId", h.GetClassByID)
		api.POST("/classes/:classId/save", h.SaveAttendance)

		// Student routes within a class
		api.GET("/classes/:classId/students", h.GetStudentsByClass)
		api.POST("/classes/:classId/students/:studentId/toggle", h.ToggleStudent)

		api.GET("/ping", PingHandler)
	}
	return router
}

// respondError maps session errors onto HTTP statuses
func (h *APIHandler) respondError(c *gin.Context, err error) {
	var (
		loadErr   *attendance.LoadError
		lookupErr *attendance.LookupError
		writeErr  *attendance.WriteError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &lookupErr):
		status = http.StatusNotFound
	case errors.As(err, &loadErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &writeErr):
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		h.log.Error(component, err, map[string]interface{}{"path": c.FullPath()})
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// --- Class Handlers ---

// GetAllClasses handles GET /api/classes
func (h *APIHandler) GetAllClasses(c *gin.Context) {
	classes := h.Session.Classes()
	if classes == nil {
		// Return empty list instead of null for JSON consistency
		classes = []models.Clazz{}
	}
	c.JSON(http.StatusOK, classes)
}

// GetClassByID handles GET /api/classes/:classId
func (h *APIHandler) GetClassByID(c *gin.Context) {
	roster, err := h.Session.Roster(c.Param("classId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roster)
}

// LoadClass handles POST /api/classes
func (h *APIHandler) LoadClass(c *gin.Context) {
	var req LoadClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	roster, err := h.Session.Load(c.Request.Context(), req.Name, req.Path)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, roster)
}

// SaveAttendance handles POST /api/classes/:classId/save
func (h *APIHandler) SaveAttendance(c *gin.Context) {
	res, err := h.Session.Save(c.Request.Context(), c.Param("classId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- Student Handlers ---

// GetStudentsByClass handles GET /api/classes/:classId/students
func (h *APIHandler) GetStudentsByClass(c *gin.Context) {
	students, err := h.Session.Statuses(c.Param("classId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

// ToggleStudent handles POST /api/classes/:classId/students/:studentId/toggle
func (h *APIHandler) ToggleStudent(c *gin.Context) {
	classID := c.Param("classId")
	studentID := c.Param("studentId")

	present, err := h.Session.Toggle(c.Request.Context(), classID, studentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"classId":   classID,
		"studentId": studentID,
		"present":   present,
		"status":    h.Session.Label(present),
	})
}

// --- Ping Handler ---
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}
