package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/sncix/pinyin-annotation/config"
	"github.com/sncix/pinyin-annotation/pkg/apperror/status"
)

// ErrorResponse is the standardized HTTP error payload
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

type FiberSuccessMessage struct {
	Code       status.SuccessCode `json:"code"`
	Message    string             `json:"message"`
	TrackingID string             `json:"tracking_id"`
	Data       any                `json:"data"`
}

// Writer renders error and success payloads and logs failed requests.
type Writer struct {
	log *logrus.Entry
}

func NewWriter(log *logrus.Entry) *Writer {
	return &Writer{log: log}
}

// FormatCode renders code the way clients see it, e.g. "PY-1001".
func FormatCode(code status.ErrorCode) string {
	return fmt.Sprintf("PY-%d", code)
}

// WriteError logs a structured warning and returns a standardized JSON error
func (w *Writer) WriteError(module config.Module, c fiber.Ctx, httpStatus int, code string, message string) error {
	w.log.WithFields(logrus.Fields{
		"module":        module,
		"status_code":   httpStatus,
		"error_code":    code,
		"error_message": message,
		"http_method":   c.Method(),
		"path":          c.Path(),
		"ip":            c.IP(),
		"request_id":    c.Get("X-Request-ID"),
		"body":          string(c.Body()),
	}).Warn("http error")

	return c.Status(httpStatus).JSON(ErrorResponse{
		Error:     message,
		ErrorCode: code,
	})
}

// Shorthands for common error responses
func (w *Writer) BadRequest(module config.Module, c fiber.Ctx, code status.ErrorCode, message string) error {
	return w.WriteError(module, c, fiber.StatusBadRequest, FormatCode(code), message)
}

// InternalError writes a structured warning and returns a standardized JSON error
func (w *Writer) InternalError(module config.Module, c fiber.Ctx, err error) error {
	return w.WriteError(module, c, fiber.StatusInternalServerError, FormatCode(status.ErrorCodeInternal), err.Error())
}

// Error maps err to a response. A status.CodedError picks the code and
// whether it is the client's fault; anything else is a 500.
func (w *Writer) Error(module config.Module, c fiber.Ctx, err error) error {
	var coded status.CodedError
	if !errors.As(err, &coded) {
		return w.InternalError(module, c, err)
	}
	code := coded.ErrorCode()
	if code.IsClientError() {
		return w.BadRequest(module, c, code, err.Error())
	}
	return w.WriteError(module, c, fiber.StatusInternalServerError, FormatCode(code), err.Error())
}

// Success writes a standardized JSON success response
func Success(c fiber.Ctx, response FiberSuccessMessage) error {
	return c.Status(fiber.StatusOK).JSON(response)
}
