package websocket

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/askwhyharsh/scamcheck/internal/scam"
	"github.com/askwhyharsh/scamcheck/internal/urlutil"
	apperrors "github.com/askwhyharsh/scamcheck/pkg/errors"
	"github.com/askwhyharsh/scamcheck/pkg/logger"
	"github.com/askwhyharsh/scamcheck/pkg/validator"
)

type RateLimiter interface {
	AllowAnalysis(ctx context.Context, clientKey string) (bool, error)
}

type Handler struct {
	hub       *Hub
	detector  *scam.Detector
	limiter   RateLimiter
	validator validator.Validator
	logger    logger.Logger
	upgrader  websocket.Upgrader
}

// NewHandler builds the live analysis endpoint. An empty allowedOrigins
// accepts any origin.
func NewHandler(hub *Hub, detector *scam.Detector, limiter RateLimiter, v validator.Validator, log logger.Logger, allowedOrigins []string) *Handler {
	h := &Handler{
		hub:       hub,
		detector:  detector,
		limiter:   limiter,
		validator: v,
		logger:    log,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}

	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// GET /ws
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade connection", "error", err)
		return
	}

	client := NewClient(h.hub, conn, uuid.New().String(), c.ClientIP(), h, h.logger)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump()
}

func (h *Handler) HandleMessage(client *Client, msg *IncomingMessage) {
	switch msg.Type {
	case MessageTypeAnalyze:
		h.handleAnalyze(client, msg)
	case MessageTypeExtract:
		client.Send(NewURLsMessage(msg.ID, urlutil.ExtractAll(msg.Text)))
	case MessageTypePing:
		client.Send(NewPongMessage(msg.ID))
	default:
		client.SendError(msg.ID, apperrors.ErrInvalidMessageType.Error(), "INVALID_MESSAGE_TYPE")
	}
}

func (h *Handler) handleAnalyze(client *Client, msg *IncomingMessage) {
	if err := h.validator.ValidateAnalyzeRequest(msg.Text, msg.URL); err != nil {
		code := "INVALID_REQUEST"
		if errors.Is(err, apperrors.ErrInvalidURL) {
			code = "INVALID_URL"
		}
		client.SendError(msg.ID, err.Error(), code)
		return
	}

	allowed, err := h.limiter.AllowAnalysis(context.Background(), "ip:"+client.IP())
	if err != nil {
		h.logger.Error("Failed to check analysis rate limit", "client", client.ID(), "error", err)
	} else if !allowed {
		client.SendError(msg.ID, apperrors.ErrRateLimitExceeded.Error(), "RATE_LIMIT")
		return
	}

	autoDetect := true
	if msg.AutoDetect != nil {
		autoDetect = *msg.AutoDetect
	}

	analysis := h.detector.Analyze(scam.Input{
		Text:       msg.Text,
		URL:        msg.URL,
		Locale:     msg.Locale,
		AutoDetect: autoDetect,
	})

	client.Send(NewResultMessage(msg.ID, analysis))
}
