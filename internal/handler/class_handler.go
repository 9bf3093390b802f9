package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classum/campus-backend/internal/config"
	"github.com/classum/campus-backend/internal/middleware"
	"github.com/classum/campus-backend/internal/model"
	"github.com/classum/campus-backend/internal/response"
	"github.com/classum/campus-backend/internal/service"
	"github.com/classum/campus-backend/internal/validator"
)

// ClassHandler handles class and assignment endpoints under a course.
type ClassHandler struct {
	classService      *service.ClassService
	submissionService *service.SubmissionService
	cfg               *config.Config
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService, submissionService *service.SubmissionService, cfg *config.Config) *ClassHandler {
	return &ClassHandler{
		classService:      classService,
		submissionService: submissionService,
		cfg:               cfg,
	}
}

// ListClasses godoc
// GET /api/courses/:courseID/classes
// Lists a course's classes, latest part first, with the caller's
// submission state.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseID"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	claims := middleware.GetClaims(c)
	classes, err := h.classService.ListByCourse(c.Request.Context(), courseID, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// CreateClassRequest is the payload for adding a class to a course.
type CreateClassRequest struct {
	Part        int    `json:"part" binding:"required,min=1"`
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
}

// CreateClass godoc
// POST /api/courses/:courseID/classes
// Adds a class idempotently under (course, part).
func (h *ClassHandler) CreateClass(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseID"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req CreateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	id, err := h.classService.Create(c.Request.Context(), &model.Class{
		CourseID:    courseID,
		Part:        req.Part,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrClassConflict):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"id": id})
}

// SubmitAssignment godoc
// POST /api/courses/:courseID/classes/:classID/assignments
// Uploads the caller's assignment file for a class.
func (h *ClassHandler) SubmitAssignment(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseID"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	classID, err := uuid.Parse(c.Param("classID"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	if fileHeader.Size > h.cfg.MaxUploadBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	claims := middleware.GetClaims(c)
	err = h.submissionService.Submit(c.Request.Context(), claims.UserID, courseID, classID, fileHeader.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound), errors.Is(err, service.ErrClassNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrCourseNotInProgress), errors.Is(err, service.ErrSubmissionClosed):
			response.Fail(c, http.StatusBadRequest, response.ErrWrongState)
		case errors.Is(err, service.ErrCourseNotTaken):
			response.Fail(c, http.StatusBadRequest, response.ErrCourseNotTaken)
		case errors.Is(err, service.ErrStorageFailure):
			response.Fail(c, http.StatusInternalServerError, response.ErrStorageFailure)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"status": "submitted"})
}

// RecordScores godoc
// PUT /api/courses/:courseID/classes/:classID/assignments/scores
// Bulk-records grades for a closed class. Entries whose user code
// matches no submission are silently skipped.
func (h *ClassHandler) RecordScores(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("classID"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var scores []service.ScoreEntry
	if err := c.ShouldBindJSON(&scores); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	for _, entry := range scores {
		if entry.UserCode == "" || entry.Score < 0 || entry.Score > 100 {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
	}

	if err := h.submissionService.RecordScores(c.Request.Context(), classID, scores); err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrClassNotClosed):
			response.Fail(c, http.StatusBadRequest, response.ErrWrongState)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "recorded"})
}

// ExportSubmissions godoc
// GET /api/courses/:courseID/classes/:classID/assignments/export
// Archives the class's submissions, closes it to further uploads, and
// returns the zip. Re-exporting regenerates the archive.
func (h *ClassHandler) ExportSubmissions(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("classID"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	archivePath, err := h.submissionService.CloseAndExport(c.Request.Context(), classID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrStorageFailure):
			response.Fail(c, http.StatusInternalServerError, response.ErrStorageFailure)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	c.FileAttachment(archivePath, classID.String()+".zip")
}
