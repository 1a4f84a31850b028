package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classlive/internal/config"
	"classlive/internal/domain"
	"classlive/internal/http/dto"
	"classlive/internal/http/resp"
	"classlive/internal/model"
	"classlive/internal/service/notify"
	"classlive/internal/signaling"
	"classlive/internal/sse"
)

type Handler struct {
	cfg        *config.Config
	svc        *notify.Service
	dispatcher *notify.Dispatcher
	hub        *sse.Hub
	signal     *signaling.Hub
	log        *zap.Logger
}

func NewHandler(cfg *config.Config, svc *notify.Service, dispatcher *notify.Dispatcher, hub *sse.Hub, signal *signaling.Hub, logger *zap.Logger) *Handler {
	return &Handler{cfg: cfg, svc: svc, dispatcher: dispatcher, hub: hub, signal: signal, log: logger}
}

// userID resolves the authenticated caller. Authentication itself is
// upstream; the proxy forwards the identity in headers, SSE clients fall back
// to a query parameter because EventSource cannot set headers.
func userID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return c.Query("user_id")
}

func userName(c *gin.Context) string {
	if name := c.GetHeader("X-User-Name"); name != "" {
		return name
	}
	return c.Query("user_name")
}

// DeliverNotification is the internal endpoint the worker forwards envelopes
// to. Any non-2xx answer makes the worker requeue the envelope.
func (h *Handler) DeliverNotification(c *gin.Context) {
	var envelope model.Envelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid envelope json"})
		return
	}

	created, err := h.svc.Deliver(c.Request.Context(), envelope)
	if err != nil {
		if errors.Is(err, domain.ErrEnvelopeInvalid) || errors.Is(err, domain.ErrInvalidNotificationType) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: err.Error()})
			return
		}
		h.log.Error("deliver notification failed", zap.String("type", envelope.Type), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to deliver notification"})
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Code: resp.CodeDelivered, Message: strconv.Itoa(len(created)) + " notifications created"})
}

// DispatchNotification accepts a domain event from trusted backend callers
// and queues it for asynchronous fanout.
func (h *Handler) DispatchNotification(c *gin.Context) {
	var req dto.DispatchNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return
	}
	if req.Title == "" || req.Message == "" || req.Type == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "title, message, type are required"})
		return
	}
	if !domain.IsValidNotificationType(req.Type) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "unknown notification type"})
		return
	}

	err := h.dispatcher.Dispatch(c.Request.Context(), model.Envelope{
		UserIDs:      req.UserIDs,
		Title:        req.Title,
		Message:      req.Message,
		Type:         req.Type,
		ClassroomID:  req.ClassroomID,
		AssignmentID: req.AssignmentID,
		Metadata:     req.Metadata,
	})
	if err != nil {
		h.log.Error("dispatch notification failed", zap.String("type", req.Type), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to dispatch notification"})
		return
	}
	c.JSON(http.StatusAccepted, dto.StatusResponse{Code: resp.CodeQueued, Message: "queued"})
}

func (h *Handler) ListNotifications(c *gin.Context) {
	user := userID(c)
	if user == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "user required"})
		return
	}

	limit := h.cfg.HistoryLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			limit = n
		}
	}

	history, err := h.svc.ListHistory(c.Request.Context(), user, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to list notifications"})
		return
	}
	if history == nil {
		history = []model.Notification{}
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	user := userID(c)
	if user == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "user required"})
		return
	}

	var req dto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), user, req.IDs); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to mark notifications read"})
		return
	}
	c.Status(http.StatusNoContent)
}

// SSE streams the caller's private notification channel: recent history
// first, then live pushes, with heartbeat comments in between.
func (h *Handler) SSE(c *gin.Context) {
	user := userID(c)
	if user == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "user required"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		h.log.Error("streaming unsupported", zap.String("user_id", user))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "streaming unsupported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	limit := h.cfg.HistoryLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			limit = n
		}
	}

	history, err := h.svc.ListHistory(c.Request.Context(), user, limit)
	if err != nil {
		h.log.Error("list history failed", zap.String("user_id", user), zap.Int("limit", limit), zap.Error(err))
	} else {
		for i := len(history) - 1; i >= 0; i-- {
			if err := writePush(c.Writer, model.PushNotification{Notification: history[i]}); err != nil {
				h.log.Error("write history notification failed", zap.String("user_id", user), zap.Error(err))
				return
			}
		}
		flusher.Flush()
	}

	client := &sse.Client{
		UserID: user,
		Ch:     make(chan model.PushNotification, 16),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	heartbeat := time.NewTicker(h.cfg.SSEHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(c.Writer, ": ping\n\n"); err != nil {
				h.log.Error("heartbeat write failed", zap.String("user_id", user), zap.Error(err))
				return
			}
			flusher.Flush()
		case notification, ok := <-client.Ch:
			if !ok {
				return
			}
			if err := writePush(c.Writer, notification); err != nil {
				h.log.Error("write notification failed", zap.String("user_id", user), zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func writePush(w http.ResponseWriter, notification model.PushNotification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	// Clients subscribe with addEventListener("NotificationReceived", ...).
	_, err = fmt.Fprintf(w, "id: %d\nevent: NotificationReceived\ndata: %s\n\n", notification.ID, payload)
	return err
}
