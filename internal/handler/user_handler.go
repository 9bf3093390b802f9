package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classum/campus-backend/internal/middleware"
	"github.com/classum/campus-backend/internal/response"
	"github.com/classum/campus-backend/internal/service"
	"github.com/classum/campus-backend/internal/validator"
)

// UserHandler handles the authenticated user's profile, registrations and
// grade report.
type UserHandler struct {
	userService         *service.UserService
	registrationService *service.RegistrationService
	gradeService        *service.GradeService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService, registrationService *service.RegistrationService, gradeService *service.GradeService) *UserHandler {
	return &UserHandler{
		userService:         userService,
		registrationService: registrationService,
		gradeService:        gradeService,
	}
}

// Me godoc
// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": gin.H{
			"code":     user.Code,
			"name":     user.Name,
			"is_admin": user.IsAdmin(),
		},
	})
}

// UpdateMeRequest is the profile update payload.
type UpdateMeRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// UpdateMe godoc
// PUT /api/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.userService.UpdateName(c.Request.Context(), claims.UserID, req.Name); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"name": req.Name})
}

// MeCourses godoc
// GET /api/users/me/courses
// Lists the caller's registered, not-yet-closed courses.
func (h *UserHandler) MeCourses(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courses, err := h.registrationService.ListOpenForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// RegisterCoursesRequest is the batch registration payload.
type RegisterCoursesRequest struct {
	CourseIDs []string `json:"course_ids" binding:"required,min=1,dive,uuid"`
}

// RegisterCourses godoc
// PUT /api/users/me/courses
// Registers the caller to every course in the batch, or rejects the whole
// batch with the per-course reasons.
func (h *UserHandler) RegisterCourses(c *gin.Context) {
	var req RegisterCoursesRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.CourseIDs))
	for _, raw := range req.CourseIDs {
		ids = append(ids, uuid.MustParse(raw))
	}

	claims := middleware.GetClaims(c)
	err := h.registrationService.Register(c.Request.Context(), claims.UserID, ids)
	if err != nil {
		var regErr *service.RegistrationError
		if errors.As(err, &regErr) {
			response.FailWithDetails(c, http.StatusBadRequest, response.ErrRegistrationInvalid, regErr)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "registered"})
}

// MeGrades godoc
// GET /api/users/me/grades
// Returns the caller's full grade report with cohort statistics.
func (h *UserHandler) MeGrades(c *gin.Context) {
	claims := middleware.GetClaims(c)
	report, err := h.gradeService.Report(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grades": report})
}
