package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"sutra/internal/observability"
	"sutra/internal/task"
)

const healthMessage = "sutra task runner is running"

// TaskProcessor turns a task into a report.
type TaskProcessor interface {
	Process(ctx context.Context, t task.Task) (*task.Report, error)
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type apiErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
}

// APIHandler serves the task endpoints.
type APIHandler struct {
	processor    TaskProcessor
	logger       *observability.Logger
	maxBodyBytes int64
}

// NewAPIHandler creates a handler on top of processor. Error paths log
// through logger with the request ID attached. maxBodyBytes <= 0 leaves
// request bodies unbounded.
func NewAPIHandler(processor TaskProcessor, logger *observability.Logger, maxBodyBytes int64) *APIHandler {
	if logger == nil {
		logger = observability.NewLogger(observability.LogConfig{Output: io.Discard})
	}
	return &APIHandler{
		processor:    processor,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// HandleHealth reports liveness.
func (h *APIHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Message: healthMessage,
	})
}

// HandleEvaluate classifies and runs the task in the request body.
func (h *APIHandler) HandleEvaluate(c *gin.Context) {
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), nil)
			return
		}
		h.writeError(c, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	t, err := task.Decode(body)
	if err != nil {
		if errors.Is(err, task.ErrEmptyTask) {
			h.writeError(c, http.StatusBadRequest, "No task data provided", nil)
			return
		}
		h.writeError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	h.process(c, t)
}

// HandleSample runs one of the canned sample tasks.
func (h *APIHandler) HandleSample(c *gin.Context) {
	kind := c.Param("risk_type")
	t, ok := task.Sample(kind)
	if !ok {
		h.writeError(c, http.StatusBadRequest, fmt.Sprintf("Unknown risk type: %s", kind), nil)
		return
	}
	h.process(c, t)
}

func (h *APIHandler) process(c *gin.Context, t task.Task) {
	if h.processor == nil {
		h.writeFailure(c, errors.New("task processor not configured"))
		return
	}
	report, err := h.processor.Process(c.Request.Context(), t)
	if err != nil {
		h.writeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *APIHandler) writeFailure(c *gin.Context, err error) {
	h.logger.ErrorContext(c.Request.Context(), "task processing failed", "error", err)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, apiErrorResponse{
		Error:  err.Error(),
		Status: string(task.ReportFailed),
	})
}

func (h *APIHandler) writeError(c *gin.Context, status int, message string, err error) {
	args := []any{"status", status, "message", message}
	if err != nil {
		args = append(args, "error", err)
	}
	h.logger.WarnContext(c.Request.Context(), "request rejected", args...)
	c.JSON(status, apiErrorResponse{Error: message})
}
