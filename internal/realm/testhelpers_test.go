package realm

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rotmg-stash/stash-helper/internal/httpclient"
	"github.com/rotmg-stash/stash-helper/internal/rate"
)

const validVerifyBody = `<AccessToken>abc</AccessToken><AccessTokenTimestamp>t1</AccessTokenTimestamp><AccessTokenExpiration>e1</AccessTokenExpiration>`

// recordedRequest captures what the mock service received.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	CType  string
}

// mockRealm is an httptest server standing in for the game web service.
type mockRealm struct {
	*httptest.Server
	mu         sync.Mutex
	requests   []recordedRequest
	verifyBody string
	charBody   string
}

func newMockRealm(t *testing.T, verifyBody, charBody string) *mockRealm {
	t.Helper()
	m := &mockRealm{verifyBody: verifyBody, charBody: charBody}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(raw))
		m.mu.Lock()
		m.requests = append(m.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Form:   form,
			CType:  r.Header.Get("Content-Type"),
		})
		verifyBody, charBody := m.verifyBody, m.charBody
		m.mu.Unlock()

		switch {
		case r.Method == http.MethodPost && r.URL.Path == verifyPath:
			_, _ = w.Write([]byte(verifyBody))
		case r.Method == http.MethodGet && r.URL.Path == charListPath:
			_, _ = w.Write([]byte(charBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mockRealm) SetVerifyBody(body string) {
	m.mu.Lock()
	m.verifyBody = body
	m.mu.Unlock()
}

func (m *mockRealm) Requests() []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedRequest(nil), m.requests...)
}

// newTestClient returns a Client wired to baseURL with an in-memory cooldown guard.
func newTestClient(t *testing.T, baseURL string, httpClient *http.Client) (*Client, *rate.Guard) {
	t.Helper()
	return newTestClientWithLogger(t, zap.NewNop(), baseURL, httpClient)
}

// newTestClientWithLogger is newTestClient with a caller-supplied logger.
func newTestClientWithLogger(t *testing.T, logger *zap.Logger, baseURL string, httpClient *http.Client) (*Client, *rate.Guard) {
	t.Helper()
	require.NotEmpty(t, baseURL)
	guard := rate.NewGuard(logger, rate.NewMemoryCooldownStore(), 5*time.Minute)
	exec := httpclient.New(logger, nil, httpClient, "realm")
	return NewClient(logger, exec, baseURL, guard), guard
}
