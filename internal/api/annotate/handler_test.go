package annotate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sncix/pinyin-annotation/internal/core/disambiguate"
	"github.com/sncix/pinyin-annotation/internal/core/lookup"
	"github.com/sncix/pinyin-annotation/pkg/apperror"
)

type stubAnnotator struct {
	readings []string
	err      error
	phrase   string
}

func (s *stubAnnotator) Readings(_ context.Context, phrase string) ([]string, error) {
	s.phrase = phrase
	return s.readings, s.err
}

type successBody struct {
	Code       int      `json:"code"`
	TrackingID string   `json:"tracking_id"`
	Data       Response `json:"data"`
}

func newApp(a Annotator) (*fiber.App, *test.Hook) {
	log, hook := test.NewNullLogger()
	app := fiber.New()
	RegisterRoutes(app, NewHandler(a, apperror.NewWriter(logrus.NewEntry(log)), 0))
	return app, hook
}

func post(t *testing.T, app *fiber.App, body string, header map[string]string) (int, []byte, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/annotate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b, resp.Header.Get("X-Request-ID")
}

func TestHandleAnnotate_OK(t *testing.T) {
	t.Parallel()

	a := &stubAnnotator{readings: []string{"ke kou ke le gong si"}}
	app, _ := newApp(a)

	code, b, reqID := post(t, app, `{"phrase":"  可口可樂公司 "}`, map[string]string{"X-Request-ID": "req-1"})
	require.Equal(t, fiber.StatusOK, code, string(b))
	assert.Equal(t, "req-1", reqID)
	assert.Equal(t, "可口可樂公司", a.phrase)

	var got successBody
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, 200, got.Code)
	assert.Equal(t, "req-1", got.TrackingID)
	assert.Equal(t, Response{Phrase: "可口可樂公司", Readings: []string{"ke kou ke le gong si"}}, got.Data)
}

func TestHandleAnnotate_EmptyReadingsIsArray(t *testing.T) {
	t.Parallel()

	app, _ := newApp(&stubAnnotator{readings: nil})
	code, b, reqID := post(t, app, `{"phrase":"可樂"}`, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.NotEmpty(t, reqID)
	assert.Contains(t, string(b), `"readings":[]`)
}

func TestHandleAnnotate_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		body     string
		err      error
		status   int
		wantCode string
	}{
		"malformed body": {body: `{"phrase":`, status: fiber.StatusBadRequest, wantCode: "PY-0"},
		"blank phrase":   {body: `{"phrase":"  "}`, status: fiber.StatusBadRequest, wantCode: "PY-1"},
		"unknown glyph": {
			body:     `{"phrase":"可x"}`,
			err:      fmt.Errorf("lookup: %w", lookup.ErrUnknownGlyph),
			status:   fiber.StatusBadRequest,
			wantCode: "PY-2",
		},
		"schema violation": {
			body:     `{"phrase":"可樂"}`,
			err:      fmt.Errorf("summary: %w", disambiguate.ErrSchemaValidation),
			status:   fiber.StatusInternalServerError,
			wantCode: "PY-1001",
		},
		"transport failure": {
			body:     `{"phrase":"可樂"}`,
			err:      errors.New("connection refused"),
			status:   fiber.StatusInternalServerError,
			wantCode: "PY-1000",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			app, hook := newApp(&stubAnnotator{err: tc.err})
			code, b, _ := post(t, app, tc.body, nil)
			assert.Equal(t, tc.status, code)

			var got apperror.ErrorResponse
			require.NoError(t, json.Unmarshal(b, &got))
			assert.Equal(t, tc.wantCode, got.ErrorCode)
			assert.NotEmpty(t, got.Error)

			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		})
	}
}
