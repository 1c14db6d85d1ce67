package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/researchtrack-backend/internal/domain/extraction"
	"github.com/yungbote/researchtrack-backend/internal/domain/programs"
	"github.com/yungbote/researchtrack-backend/internal/modules/intake"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

type fakeIngester struct {
	res   *extraction.Result
	err   error
	calls int
	last  intake.IngestInput
}

func (f *fakeIngester) Ingest(ctx context.Context, in intake.IngestInput) (*extraction.Result, error) {
	f.calls++
	f.last = in
	return f.res, f.err
}

func serveExtract(t *testing.T, ing Ingester, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/extract", NewExtractHandler(logger.Nop(), ing).Extract)
	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestExtractHandlerRejectsInvalidBody(t *testing.T) {
	cases := map[string]string{
		"not json":      `{`,
		"no message":    `{"userId":"u1"}`,
		"blank message": `{"message":"   ","userId":"u1"}`,
		"no user":       `{"message":"hello"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			ing := &fakeIngester{}
			rec := serveExtract(t, ing, body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 0, ing.calls)

			var env map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, false, env["success"])
			assert.NotEmpty(t, env["error"])
		})
	}
}

func TestExtractHandlerFatalErrorIsGeneric(t *testing.T) {
	ing := &fakeIngester{err: extraction.UpstreamError("complete", errors.New("status 401: bad key sk-123"))}
	rec := serveExtract(t, ing, `{"message":"PhD at MIT","userId":"u1"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, genericExtractFailure, env["error"])
	assert.Equal(t, false, env["success"])
	assert.NotContains(t, rec.Body.String(), "sk-123")
}

func TestExtractHandlerReturnsResult(t *testing.T) {
	res := extraction.NewResult(uuid.New(), `{"programs":[]}`)
	res.Programs = append(res.Programs, &programs.Program{Title: "PhD in Biology", University: "MIT"})
	ing := &fakeIngester{res: res}

	rec := serveExtract(t, ing, `{"message":" PhD at MIT ","userId":"u1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, intake.IngestInput{Message: "PhD at MIT", UserID: "u1"}, ing.last)

	var body struct {
		Programs    []map[string]any `json:"programs"`
		Deadlines   []any            `json:"deadlines"`
		RawResponse string           `json:"rawResponse"`
		Partial     bool             `json:"partial"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Programs, 1)
	assert.Equal(t, "PhD in Biology", body.Programs[0]["title"])
	assert.NotNil(t, body.Deadlines)
	assert.Empty(t, body.Deadlines)
	assert.Equal(t, `{"programs":[]}`, body.RawResponse)
	assert.False(t, body.Partial)
}
