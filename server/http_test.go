package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepwise-org/stepwise/tutor"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(tutor.New(tutor.WithLogger(logger)), logger)
}

func postQuery(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestQuerySolve(t *testing.T) {
	router := newTestRouter()
	w := postQuery(t, router, `{"text": "solve 2x^2 + 3x - 5 = 0"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Request struct {
			Op string `json:"op"`
		} `json:"request"`
		Result struct {
			Roots []struct {
				Re   float64 `json:"re"`
				Text string  `json:"text"`
			} `json:"roots"`
			Exact bool `json:"exact"`
			Steps []struct {
				Rule        string `json:"rule"`
				Description string `json:"description"`
			} `json:"steps"`
		} `json:"result"`
		Event struct {
			Concept string `json:"concept"`
		} `json:"event"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "solve", resp.Request.Op)
	require.Len(t, resp.Result.Roots, 2)
	assert.Equal(t, "1", resp.Result.Roots[0].Text)
	assert.Equal(t, "-5/2", resp.Result.Roots[1].Text)
	assert.True(t, resp.Result.Exact)
	assert.NotEmpty(t, resp.Result.Steps)
	assert.Equal(t, "quadratic-equations", resp.Event.Concept)
}

func TestQueryVoiceModality(t *testing.T) {
	router := newTestRouter()
	w := postQuery(t, router, `{"text": "solve x squared minus four equals zero", "modality": "voice"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Request struct {
			Modality string `json:"modality"`
		} `json:"request"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "voice", resp.Request.Modality)
}

func TestQueryErrorMapping(t *testing.T) {
	router := newTestRouter()
	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing text", `{}`, http.StatusBadRequest, "bad-request"},
		{"parse error", `{"text": "solve x +"}`, http.StatusBadRequest, "parse-error"},
		{"no verb", `{"text": "x^2 - 4 = 0"}`, http.StatusBadRequest, "unrecognized-intent"},
		{"ambiguous variable", `{"text": "derivative of x*y + y*z"}`, http.StatusBadRequest, "ambiguous-variable"},
		{"unsupported form", `{"text": "solve sin(x) = 0"}`, http.StatusUnprocessableEntity, "unsupported-form"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postQuery(t, router, tc.body)
			assert.Equal(t, tc.status, w.Code)

			var resp struct {
				Code  string `json:"code"`
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}
