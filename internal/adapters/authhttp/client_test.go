package authhttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/edition-dashboard/internal/domain/querystring"
)

// fakeAPI serves /v2/* and /oauth. Data requests succeed only with the
// token the OAuth endpoint hands out.
type fakeAPI struct {
	t          *testing.T
	validToken string

	dataCalls    atomic.Int32
	refreshCalls atomic.Int32
	forbidden    atomic.Int32

	mu          sync.Mutex
	authHeaders []string
	bodies      []string

	// overrides
	dataHandler    http.HandlerFunc
	refreshHandler http.HandlerFunc
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{t: t, validToken: "abc"}
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth", func(w http.ResponseWriter, r *http.Request) {
		api.refreshCalls.Add(1)
		if api.refreshHandler != nil {
			api.refreshHandler(w, r)
			return
		}
		var req tokenRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "client_credentials", req.GrantType)
		assert.Equal(t, "id", req.ClientID)
		assert.Equal(t, "secret", req.ClientSecret)
		writeJSON(w, http.StatusOK, map[string]string{"access_token": api.validToken})
	})
	mux.HandleFunc("/v2/", func(w http.ResponseWriter, r *http.Request) {
		api.dataCalls.Add(1)
		body, _ := io.ReadAll(r.Body)
		api.mu.Lock()
		api.authHeaders = append(api.authHeaders, r.Header.Get("Authorization"))
		api.bodies = append(api.bodies, string(body))
		api.mu.Unlock()

		if api.dataHandler != nil {
			api.dataHandler(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+api.validToken {
			api.forbidden.Add(1)
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "forbidden"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"ok": "yes"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return api, server
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, server *httptest.Server, session *Session, opts ...Option) *Client {
	t.Helper()
	c, err := New(server.URL+"/v2/", server.URL+"/oauth", session, Credentials{ClientID: "id", ClientSecret: "secret"}, opts...)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	_, err := New("", "http://x/oauth", nil, Credentials{})
	assert.ErrorIs(t, err, querystring.ErrInvalidBaseURL)

	_, err = New("http://x/v2", " ", nil, Credentials{})
	assert.ErrorIs(t, err, querystring.ErrInvalidBaseURL)

	c, err := New("http://x/v2", "http://x/oauth", nil, Credentials{})
	require.NoError(t, err)
	assert.Equal(t, Unauthenticated, c.Session().State())
}

func TestClient_AttachesToken(t *testing.T) {
	api, server := newFakeAPI(t)
	c := newTestClient(t, server, NewSession("abc"))

	var out map[string]string
	err := c.GetJSON(context.Background(), "magazine/edition", &out)

	require.NoError(t, err)
	assert.Equal(t, "yes", out["ok"])
	assert.Equal(t, int32(1), api.dataCalls.Load())
	assert.Equal(t, int32(0), api.refreshCalls.Load())
	assert.Equal(t, []string{"Bearer abc"}, api.authHeaders)
}

func TestClient_RefreshesOn403(t *testing.T) {
	t.Run("retries once with the new token", func(t *testing.T) {
		api, server := newFakeAPI(t)
		session := NewSession("stale")
		c := newTestClient(t, server, session)

		resp, err := c.Get(context.Background(), "magazine/edition")

		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(2), api.dataCalls.Load())
		assert.Equal(t, int32(1), api.refreshCalls.Load())
		assert.Equal(t, []string{"Bearer stale", "Bearer abc"}, api.authHeaders)
		assert.Equal(t, "abc", session.Token())
		assert.Equal(t, Authenticated, session.State())
	})

	t.Run("works without an initial token", func(t *testing.T) {
		api, server := newFakeAPI(t)
		c := newTestClient(t, server, NewSession(""))

		resp, err := c.Get(context.Background(), "magazine/edition")

		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, []string{"", "Bearer abc"}, api.authHeaders)
	})

	t.Run("second 403 is not retried", func(t *testing.T) {
		api, server := newFakeAPI(t)
		api.dataHandler = func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "nope"})
		}
		c := newTestClient(t, server, NewSession(""))

		_, err := c.Get(context.Background(), "magazine/edition")

		require.Error(t, err)
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.True(t, httpErr.IsForbidden())
		assert.NotErrorIs(t, err, ErrCredentialRefresh)
		assert.Equal(t, int32(2), api.dataCalls.Load())
		assert.Equal(t, int32(1), api.refreshCalls.Load())
		assert.Equal(t, "Bearer abc", api.authHeaders[1])
	})

	t.Run("resends the original body", func(t *testing.T) {
		api, server := newFakeAPI(t)
		c := newTestClient(t, server, NewSession(""))

		resp, err := c.Post(context.Background(), "magazine/edition", map[string]string{"name": "Spring"})

		require.NoError(t, err)
		resp.Body.Close()
		require.Len(t, api.bodies, 2)
		assert.JSONEq(t, `{"name":"Spring"}`, api.bodies[0])
		assert.Equal(t, api.bodies[0], api.bodies[1])
	})
}

func TestClient_RefreshFailure(t *testing.T) {
	t.Run("token endpoint error", func(t *testing.T) {
		api, server := newFakeAPI(t)
		api.refreshHandler = func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "down"})
		}
		session := NewSession("stale")
		c := newTestClient(t, server, session)

		resp, err := c.Get(context.Background(), "magazine/edition")

		assert.Nil(t, resp)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCredentialRefresh)

		var refreshErr *CredentialRefreshError
		require.ErrorAs(t, err, &refreshErr)
		assert.True(t, refreshErr.Original.IsForbidden())

		assert.True(t, IsForbidden(err), "original 403 stays reachable")
		assert.Equal(t, "", session.Token())
		assert.Equal(t, Failed, session.State())
		assert.Equal(t, int32(1), api.dataCalls.Load(), "no retry after a failed refresh")
	})

	t.Run("token response without access_token", func(t *testing.T) {
		api, server := newFakeAPI(t)
		api.refreshHandler = func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"token_type": "bearer"})
		}
		session := NewSession("stale")
		c := newTestClient(t, server, session)

		_, err := c.Get(context.Background(), "magazine/edition")

		assert.ErrorIs(t, err, ErrMissingAccessToken)
		assert.ErrorIs(t, err, ErrCredentialRefresh)
		assert.Equal(t, Failed, session.State())
	})
}

func TestClient_OtherErrorsNotRetried(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusUnauthorized} {
		api, server := newFakeAPI(t)
		api.dataHandler = func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, status, map[string]string{"message": "no"})
		}
		c := newTestClient(t, server, NewSession("abc"))

		_, err := c.Get(context.Background(), "magazine/edition/1")

		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, status, httpErr.StatusCode)
		assert.Contains(t, httpErr.Body, "no")
		assert.Equal(t, int32(1), api.dataCalls.Load())
		assert.Equal(t, int32(0), api.refreshCalls.Load())
	}

	t.Run("network error", func(t *testing.T) {
		_, server := newFakeAPI(t)
		c := newTestClient(t, server, NewSession("abc"))
		server.Close()

		_, err := c.Get(context.Background(), "magazine/edition")

		require.Error(t, err)
		var httpErr *HTTPError
		assert.False(t, errors.As(err, &httpErr))
	})
}

func TestClient_ConcurrentRefresh(t *testing.T) {
	const n = 4

	t.Run("each 403 refreshes by default", func(t *testing.T) {
		api, server := newFakeAPI(t)
		// Hold every exchange until all n are in flight.
		var waiting atomic.Int32
		api.refreshHandler = func(w http.ResponseWriter, r *http.Request) {
			waiting.Add(1)
			deadline := time.Now().Add(5 * time.Second)
			for waiting.Load() < n && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "abc"})
		}
		c := newTestClient(t, server, NewSession(""))

		runConcurrently(t, c, n)

		assert.Equal(t, int32(n), api.refreshCalls.Load())
	})

	t.Run("coalesced refresh runs once", func(t *testing.T) {
		api, server := newFakeAPI(t)
		api.refreshHandler = func(w http.ResponseWriter, r *http.Request) {
			deadline := time.Now().Add(5 * time.Second)
			for api.forbidden.Load() < n && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			time.Sleep(200 * time.Millisecond)
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "abc"})
		}
		c := newTestClient(t, server, NewSession(""), WithCoalescedRefresh())

		runConcurrently(t, c, n)

		assert.Equal(t, int32(1), api.refreshCalls.Load())
	})
}

func TestClient_CoalescedRefreshOutlivesCanceledCaller(t *testing.T) {
	api, server := newFakeAPI(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	api.refreshHandler = func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-release
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "abc"})
	}
	session := NewSession("")
	c := newTestClient(t, server, session, WithCoalescedRefresh())

	ctx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "magazine/edition")
		leaderErr <- err
	}()
	<-started

	followerErr := make(chan error, 1)
	go func() {
		resp, err := c.Get(context.Background(), "magazine/edition")
		if err == nil {
			resp.Body.Close()
		}
		followerErr <- err
	}()
	require.Eventually(t, func() bool { return api.forbidden.Load() == 2 }, 5*time.Second, 5*time.Millisecond)
	// Let the second caller join the in-flight exchange.
	time.Sleep(50 * time.Millisecond)

	cancel()
	err := <-leaderErr
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	assert.NoError(t, <-followerErr)
	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.Equal(t, "abc", session.Token())
	assert.Equal(t, Authenticated, session.State())
}

func runConcurrently(t *testing.T, c *Client, n int) {
	t.Helper()
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := c.Get(context.Background(), "magazine/edition")
			if err == nil {
				resp.Body.Close()
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []int
	refresh  []error
}

func (o *recordingObserver) ObserveRequest(_ string, status int, _ time.Duration) {
	o.mu.Lock()
	o.statuses = append(o.statuses, status)
	o.mu.Unlock()
}

func (o *recordingObserver) ObserveRefresh(err error) {
	o.mu.Lock()
	o.refresh = append(o.refresh, err)
	o.mu.Unlock()
}

func TestClient_Observer(t *testing.T) {
	_, server := newFakeAPI(t)
	obs := &recordingObserver{}
	c := newTestClient(t, server, NewSession(""), WithObserver(obs), WithTracing())

	resp, err := c.Get(context.Background(), "magazine/edition")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []int{http.StatusForbidden, http.StatusOK}, obs.statuses)
	assert.Equal(t, []error{nil}, obs.refresh)
}

func TestSessionState(t *testing.T) {
	s := NewSession("")
	assert.Equal(t, Unauthenticated, s.State())

	s.beginRefresh()
	assert.Equal(t, "refreshing_credentials", s.State().String())

	s.store("t1")
	assert.Equal(t, "t1", s.Token())
	assert.Equal(t, Authenticated, s.State())

	s.fail()
	assert.Empty(t, s.Token())
	assert.Equal(t, Failed, s.State())
}
