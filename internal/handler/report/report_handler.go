package report

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	service "github.com/dinerozz/behavior-monitor/internal/service/report"
	"github.com/gin-gonic/gin"
)

const DefaultMaxBodyBytes = 64 << 10

type ReportHandler struct {
	service  service.ReportService
	maxBytes int64
	logger   *slog.Logger
}

func NewReportHandler(service service.ReportService, maxBytes int64, logger *slog.Logger) *ReportHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return &ReportHandler{
		service:  service,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Report godoc
// @Summary      Report a behavior event
// @Description  Accepts one behavior event sent by the tracker. The body is read as raw text so both application/json and text/plain (beacon) deliveries work. Malformed or invalid events are logged and still acknowledged.
// @Tags         report
// @Accept       json
// @Accept       plain
// @Param        event  body  behavior.Event  true  "Behavior event"
// @Success      204
// @Failure      413
// @Router       /behaviors/report [post]
func (h *ReportHandler) Report(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("report body too large", slog.Int64("limit", tooLarge.Limit), slog.String("ip", c.ClientIP()))
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		h.logger.Warn("failed to read report body", slog.String("error", err.Error()))
		c.Status(http.StatusNoContent)
		return
	}

	meta := service.RequestMeta{
		UserAgent: c.Request.UserAgent(),
		ClientIP:  c.ClientIP(),
	}

	event, err := h.service.Accept(c.Request.Context(), body, meta)
	switch {
	case errors.Is(err, service.ErrMalformedPayload), errors.Is(err, service.ErrInvalidEvent):
		h.logger.Warn("behavior report ignored", slog.String("reason", err.Error()), slog.String("content_type", c.ContentType()))
	case err != nil:
		h.logger.Error("behavior report not stored", slog.String("error", err.Error()))
	default:
		h.logger.Debug("behavior report accepted", slog.String("behavior", event.Behavior), slog.String("project", event.ProjectName))
	}

	c.Status(http.StatusNoContent)
}
