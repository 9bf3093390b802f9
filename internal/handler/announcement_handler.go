package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classum/campus-backend/internal/middleware"
	"github.com/classum/campus-backend/internal/model"
	"github.com/classum/campus-backend/internal/response"
	"github.com/classum/campus-backend/internal/service"
	"github.com/classum/campus-backend/internal/validator"
)

// AnnouncementHandler handles the announcement feed endpoints.
type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
}

// NewAnnouncementHandler creates a new AnnouncementHandler.
func NewAnnouncementHandler(announcementService *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// ListAnnouncements godoc
// GET /api/announcements?course_id=&page=&limit=
// Lists the caller's feed newest first with their total unread count.
func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	var courseID *uuid.UUID
	if raw := c.Query("course_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		courseID = &id
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	claims := middleware.GetClaims(c)
	items, unread, hasNext, err := h.announcementService.List(c.Request.Context(), claims.UserID, courseID, page, limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SetLinkHeader(c, page, limit, hasNext)
	response.Success(c, http.StatusOK, gin.H{
		"announcements": items,
		"unread_count":  unread,
	})
}

// CreateAnnouncementRequest is the payload for publishing an announcement.
// The id is the client-supplied natural key; omitting it yields a fresh
// one, which forfeits retry idempotence.
type CreateAnnouncementRequest struct {
	ID      string `json:"id" binding:"omitempty,uuid"`
	Title   string `json:"title" binding:"required,max=255"`
	Message string `json:"message" binding:"required"`
}

// CreateAnnouncement godoc
// POST /api/courses/:courseID/announcements
// Publishes an announcement and fans it out to every registered student.
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseID"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req CreateAnnouncementRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	announcement := &model.Announcement{
		ID:       uuid.New(),
		CourseID: courseID,
		Title:    req.Title,
		Message:  req.Message,
	}
	if req.ID != "" {
		announcement.ID = uuid.MustParse(req.ID)
	}

	created, err := h.announcementService.Create(c.Request.Context(), announcement)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrAnnouncementConflict):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	response.Success(c, status, gin.H{"id": announcement.ID})
}

// GetAnnouncement godoc
// GET /api/announcements/:announcementID
// Returns the announcement detail and marks it read for the caller.
func (h *AnnouncementHandler) GetAnnouncement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("announcementID"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	claims := middleware.GetClaims(c)
	detail, err := h.announcementService.MarkRead(c.Request.Context(), id, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrAnnouncementNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"announcement": detail})
}
