package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/smartmlms/smartlms-backend/internal/middleware"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/smartmlms/smartlms-backend/internal/service"
	ws "github.com/smartmlms/smartlms-backend/internal/websocket"
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

// WSHandler handles the WebSocket proctoring stream.
type WSHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attemptService *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ProctorStream godoc
// WS /ws/v1/attempts/:id/proctor
// Upgrades to WebSocket so the examinee's proctoring client can stream
// violation events without per-event HTTP overhead.
func (h *WSHandler) ProctorStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	attemptID, ok := uuidParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attempt ID"})
		return
	}

	// Verify the attempt exists and belongs to this user before upgrading.
	if _, err := h.attemptService.GetAttempt(c.Request.Context(), attemptID, claims.UserID, false); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "attempt not accessible"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("attempt_id", attemptID.String()).
		Str("user_id", claims.UserID.String()).
		Logger()

	wsLog.Info().Msg("Proctoring client connected")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			ws.WriteError(conn, "malformed message")
			continue
		}

		switch envelope.Action {
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		case ws.ActionViolation:
			h.handleViolation(c, conn, wsLog, raw, attemptID)
		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(envelope.Action))
		}
	}
}

func (h *WSHandler) handleViolation(c *gin.Context, conn *websocket.Conn, wsLog zerolog.Logger, raw []byte, attemptID uuid.UUID) {
	var msg ws.ViolationRequest
	if err := json.Unmarshal(raw, &msg); err != nil {
		ws.WriteError(conn, "malformed violation payload")
		return
	}
	if msg.Type == "" {
		ws.WriteError(conn, "type is required")
		return
	}

	req := &model.ReportViolationRequest{
		Type:       model.ViolationType(msg.Type),
		Screenshot: msg.Screenshot,
		Confidence: msg.Confidence,
	}

	result, err := h.attemptService.AddViolation(c.Request.Context(), attemptID, req)
	if err != nil {
		wsLog.Error().Err(err).Msg("Record violation failed")
		ws.WriteError(conn, "record failed")
		return
	}

	wsLog.Info().
		Str("type", msg.Type).
		Int("violation_count", result.ViolationCount).
		Int("trust_score", result.TrustScore).
		Msg("Violation recorded")

	ws.WriteTyped(conn, ws.RecordedResponse{
		Event:          ws.EventRecorded,
		ViolationCount: result.ViolationCount,
		TrustScore:     result.TrustScore,
	})
}
