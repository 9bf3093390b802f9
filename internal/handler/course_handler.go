package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classum/campus-backend/internal/middleware"
	"github.com/classum/campus-backend/internal/model"
	"github.com/classum/campus-backend/internal/repository"
	"github.com/classum/campus-backend/internal/response"
	"github.com/classum/campus-backend/internal/service"
	"github.com/classum/campus-backend/internal/validator"
)

// CourseHandler handles the course catalog endpoints.
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// ListCourses godoc
// GET /api/courses
// Searches courses with filters and Link-header pagination.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	filter := repository.CourseFilter{
		Type:      model.CourseType(c.Query("type")),
		Teacher:   c.Query("teacher"),
		DayOfWeek: model.DayOfWeek(c.Query("day_of_week")),
		Keywords:  c.Query("keywords"),
		Status:    model.CourseStatus(c.Query("status")),
	}
	filter.Credit, _ = strconv.Atoi(c.Query("credit"))
	filter.Period, _ = strconv.Atoi(c.Query("period"))

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	courses, hasNext, err := h.courseService.Search(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SetLinkHeader(c, page, limit, hasNext)
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=16"`
	Type        string `json:"type" binding:"required,oneof=liberal-arts major-subjects"`
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
	Credit      int    `json:"credit" binding:"required,min=1,max=10"`
	Period      int    `json:"period" binding:"required,min=1,max=6"`
	DayOfWeek   string `json:"day_of_week" binding:"required,oneof=monday tuesday wednesday thursday friday"`
	Keywords    string `json:"keywords"`
}

// CreateCourse godoc
// POST /api/courses
// Creates a course idempotently under its code. Retrying with identical
// fields returns the existing id; diverging fields yield 409.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	course := &model.Course{
		Code:        req.Code,
		Type:        model.CourseType(req.Type),
		Name:        req.Name,
		Description: req.Description,
		Credit:      req.Credit,
		Period:      req.Period,
		DayOfWeek:   model.DayOfWeek(req.DayOfWeek),
		TeacherID:   claims.UserID,
		Keywords:    req.Keywords,
	}

	id, err := h.courseService.Create(c.Request.Context(), course)
	if err != nil {
		if errors.Is(err, service.ErrCourseConflict) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"id": id})
}

// GetCourse godoc
// GET /api/courses/:courseID
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("courseID"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	detail, err := h.courseService.GetDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": detail})
}

// SetStatusRequest is the payload for a course lifecycle transition.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=registration in-progress closed"`
}

// SetCourseStatus godoc
// PUT /api/courses/:courseID/status
func (h *CourseHandler) SetCourseStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("courseID"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req SetStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.courseService.SetStatus(c.Request.Context(), id, model.CourseStatus(req.Status)); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": req.Status})
}
