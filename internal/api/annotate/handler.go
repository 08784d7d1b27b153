package annotate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/sncix/pinyin-annotation/config"
	"github.com/sncix/pinyin-annotation/internal/core/chat"
	"github.com/sncix/pinyin-annotation/internal/core/disambiguate"
	"github.com/sncix/pinyin-annotation/internal/core/lookup"
	"github.com/sncix/pinyin-annotation/pkg/apperror"
	"github.com/sncix/pinyin-annotation/pkg/apperror/status"
)

// Annotator computes the sorted readings of a phrase.
type Annotator interface {
	Readings(ctx context.Context, phrase string) ([]string, error)
}

type Request struct {
	Phrase string `json:"phrase"`
}

type Response struct {
	Phrase   string   `json:"phrase"`
	Readings []string `json:"readings"`
}

type Handler struct {
	annotator Annotator
	writer    *apperror.Writer
	timeout   time.Duration
}

// NewHandler builds the handler. A zero timeout leaves requests unbounded.
func NewHandler(annotator Annotator, writer *apperror.Writer, timeout time.Duration) *Handler {
	return &Handler{annotator: annotator, writer: writer, timeout: timeout}
}

func (h *Handler) HandleAnnotate(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")
	if trackingID == "" {
		trackingID = uuid.NewString()
	}
	c.Set("X-Request-ID", trackingID)

	var req Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return h.writer.BadRequest(config.ModuleServer, c, status.AnnotateInvalidRequestBody, err.Error())
	}
	req.Phrase = strings.TrimSpace(req.Phrase)
	if req.Phrase == "" {
		return h.writer.BadRequest(config.ModuleServer, c, status.AnnotateMissingParams, "phrase is empty")
	}

	ctx := context.Background()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	readings, err := h.annotator.Readings(ctx, req.Phrase)
	if err != nil {
		return h.writer.Error(config.ModuleServer, c, classify(err))
	}
	if readings == nil {
		readings = []string{}
	}

	return apperror.Success(c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "annotate ok",
		TrackingID: trackingID,
		Data:       Response{Phrase: req.Phrase, Readings: readings},
	})
}

func classify(err error) error {
	switch {
	case errors.Is(err, lookup.ErrUnknownGlyph):
		return status.New(status.AnnotateUnknownGlyph, err)
	case errors.Is(err, disambiguate.ErrSchemaValidation):
		return status.New(status.AnnotateSchemaViolation, err)
	case errors.Is(err, chat.ErrSchemaUnsupported):
		return status.New(status.AnnotateSchemaUnsupported, err)
	default:
		return status.New(status.AnnotateInternal, err)
	}
}
