package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

var testKey = bytes.Repeat([]byte("k"), csrfKeyLength)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.CSRFKey = testKey
	cfg.ConfigPath = ""
	return cfg
}

func newTestServer(t *testing.T, cfg *Config, options ...Option) *Server {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	options = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, options...)
	s, err := New(cfg, options...)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return do(t, s, req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// csrfSession fetches the page and returns its body, token and cookie.
func csrfSession(t *testing.T, s *Server) (string, string, *http.Cookie) {
	t.Helper()

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := html.Parse(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	field := cascadia.MustCompile(`input[name="gorilla.csrf.Token"]`).MatchFirst(doc)
	require.NotNil(t, field, "csrf field")

	var token string
	for _, a := range field.Attr {
		if a.Key == "value" {
			token = a.Val
		}
	}
	require.NotEmpty(t, token)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "formset_csrf" {
			return rec.Body.String(), token, c
		}
	}
	t.Fatal("csrf cookie not set")
	return "", "", nil
}

func postForm(t *testing.T, s *Server, values url.Values, token string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("X-CSRF-Token", token)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return do(t, s, req)
}
