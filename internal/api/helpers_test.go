package api_test

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketplace-gateway/internal/api"
	"marketplace-gateway/internal/store"
	"marketplace-gateway/internal/store/testutil"
	"marketplace-gateway/middleware/session/application"
	"marketplace-gateway/middleware/session/infra"

	"github.com/stretchr/testify/require"
)

type testServer struct {
	db       *sql.DB
	provider *infra.JWTProvider
	handler  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.NewTestDB(t)
	provider, err := infra.NewJWTProvider("secret")
	require.NoError(t, err)

	resolver := application.Resolver{
		Identity: provider,
		Profiles: infra.ProfileStore{Repo: store.NewProfileRepository(db)},
		Timeout:  time.Second,
	}
	return &testServer{
		db:       db,
		provider: provider,
		handler:  api.NewSQLHandler(db, resolver, "USD", "KES").Router(),
	}
}

func (s *testServer) do(t *testing.T, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, "http://example"+target, rdr)
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		token, _, err := s.provider.Issue(userID)
		require.NoError(t, err)
		r.AddCookie(&http.Cookie{Name: infra.DefaultCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	require.Equal(t, status, w.Code)
	require.Equal(t, msg, decode(t, w)["error"])
}
