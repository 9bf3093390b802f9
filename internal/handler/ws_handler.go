package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classum/campus-backend/internal/config"
	"github.com/classum/campus-backend/internal/middleware"
	"github.com/classum/campus-backend/internal/model"
	"github.com/classum/campus-backend/internal/service"
	ws "github.com/classum/campus-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live announcements for the caller's registered courses.
type WSHandler struct {
	rdb                 *redis.Client
	registrationService *service.RegistrationService
	log                 zerolog.Logger
	upgrader            websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, registrationService *service.RegistrationService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:                 rdb,
		registrationService: registrationService,
		log:                 log.With().Str("component", "ws_handler").Logger(),
		upgrader:            buildUpgrader(allowedOrigins),
	}
}

// AnnouncementStream godoc
// WS /ws/announcements
// Upgrades to WebSocket and forwards announcements published on the
// channels of every course the caller is registered to. The subscription
// set is fixed at connect time; registering to a new course requires a
// reconnect.
func (h *WSHandler) AnnouncementStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	courseIDs, err := h.registrationService.ListCourseIDs(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve registrations"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("user_id", claims.UserID.String()).Logger()

	if len(courseIDs) == 0 {
		ws.SendError(conn, "no registered courses to stream")
		return
	}

	channels := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		channels = append(channels, config.CacheKey.AnnouncementChannel(id.String()))
	}

	sub := h.rdb.Subscribe(c.Request.Context(), channels...)
	defer sub.Close()

	wsLog.Info().Int("courses", len(channels)).Msg("Announcement stream connected")

	// Read pump: drains client frames so close is detected and answers
	// pings. Any read error tears the stream down via the done channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.Receive(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				ws.Send(conn, ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	feed := sub.Channel()
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case msg, ok := <-feed:
			if !ok {
				return
			}
			var event model.AnnouncementEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				wsLog.Warn().Err(err).Str("channel", msg.Channel).Msg("Malformed feed payload")
				continue
			}
			if err := ws.Send(conn, ws.AnnouncementResponse{
				Event:   ws.EventAnnouncement,
				Payload: event,
			}); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, closing stream")
				return
			}
		}
	}
}
