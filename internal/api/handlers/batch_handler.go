package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yourusername/codetrack/scraper-service/internal/aggregator"
	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/internal/progress"
	"github.com/yourusername/codetrack/scraper-service/pkg/logger"
	"go.uber.org/zap"
)

const wsWriteTimeout = 10 * time.Second

// BatchRunner processes a batch of students
type BatchRunner interface {
	ProcessBatch(ctx context.Context, students []aggregator.BatchInput, opts aggregator.BatchOptions, sink progress.Sink) (*aggregator.AggregateResult, error)
}

// BatchHandler starts batches and streams their progress
type BatchHandler struct {
	runner   BatchRunner
	hub      *progress.Hub
	upgrader websocket.Upgrader
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(runner BatchRunner, hub *progress.Hub) *BatchHandler {
	return &BatchHandler{
		runner: runner,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// BatchStudent is one parsed bulk-input row
type BatchStudent struct {
	StudentID string            `json:"student_id" binding:"required"`
	Profiles  map[string]string `json:"profiles" binding:"required"`
}

// SubmitBatchRequest represents a bulk scrape request
type SubmitBatchRequest struct {
	Students []BatchStudent `json:"students" binding:"required,min=1,dive"`
	UseCache bool           `json:"use_cache"`
}

// SubmitBatchResponse identifies the started batch
type SubmitBatchResponse struct {
	BatchID   string `json:"batch_id"`
	Total     int    `json:"total"`
	EventsURL string `json:"events_url"`
}

// SubmitBatch starts a batch in the background
// @Summary Submit batch
// @Description Scrape every listed student sequentially; progress is streamed on the events endpoint
// @Tags batches
// @Accept json
// @Produce json
// @Param request body SubmitBatchRequest true "Students"
// @Success 202 {object} SubmitBatchResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/batches [post]
func (h *BatchHandler) SubmitBatch(c *gin.Context) {
	var req SubmitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	students := make([]aggregator.BatchInput, 0, len(req.Students))
	for _, s := range req.Students {
		input := aggregator.BatchInput{
			StudentID: s.StudentID,
			Profiles:  make(map[models.Platform]string, len(s.Profiles)),
		}
		for tag, profile := range s.Profiles {
			platform, ok := models.ParsePlatform(tag)
			if !ok {
				badRequest(c, fmt.Errorf("student %s: unknown platform %q", s.StudentID, tag))
				return
			}
			input.Profiles[platform] = profile
		}
		students = append(students, input)
	}

	batchID := progress.NewBatchID()
	opts := aggregator.BatchOptions{BatchID: batchID, UseCache: req.UseCache}
	h.hub.Register(batchID)

	go func() {
		// the batch outlives the request
		if _, err := h.runner.ProcessBatch(context.Background(), students, opts, h.hub); err != nil {
			logger.Error("Batch failed", zap.String("batchID", batchID), zap.Error(err))
		}
	}()

	c.JSON(http.StatusAccepted, SubmitBatchResponse{
		BatchID:   batchID,
		Total:     len(students),
		EventsURL: "/api/v1/batches/" + batchID + "/events",
	})
}

// StreamEvents upgrades to a WebSocket and relays the batch's progress
// events until the batch completes or the client disconnects. A client
// joining late first receives the batch's most recent event.
// @Summary Stream batch progress
// @Tags batches
// @Param id path string true "Batch ID"
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/batches/{id}/events [get]
func (h *BatchHandler) StreamEvents(c *gin.Context) {
	batchID := c.Param("id")
	if !h.hub.Known(batchID) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Batch not found",
			Message: fmt.Sprintf("no recent batch %q", batchID),
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(batchID, progress.DefaultBuffer)
	defer sub.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case e, ok := <-sub.C():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(e); err != nil {
				logger.Debug("WebSocket write failed", zap.String("batchID", batchID), zap.Error(err))
				return
			}
			if e.Type == progress.TypeComplete {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "batch complete"),
					time.Now().Add(wsWriteTimeout))
				return
			}
		}
	}
}
