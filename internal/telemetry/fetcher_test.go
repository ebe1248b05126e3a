package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rileyhilliard/pvdash/internal/errors"
	"github.com/rileyhilliard/pvdash/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUpstream serves both /api/last_event and /api/state from one server.
type fakeUpstream struct {
	mu       sync.Mutex
	events   map[string]string
	state    string
	failID   string
	failCode int
	headers  []http.Header
	hits     atomic.Int32
	block    chan struct{}
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	f.mu.Lock()
	f.headers = append(f.headers, r.Header.Clone())
	f.mu.Unlock()

	switch r.URL.Path {
	case LastEventPath:
		id := r.URL.Query().Get("id")
		if id == f.failID {
			w.WriteHeader(f.failCode)
			return
		}
		if f.block != nil {
			select {
			case <-f.block:
			case <-r.Context().Done():
				return
			}
		}
		body, ok := f.events[id]
		if !ok {
			body = fmt.Sprintf(`{"vehicle": %q, "ts": null, "distance_m": null, "status": "no_data"}`, id)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	case ControllerStatePath:
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, f.state)
	default:
		http.NotFound(w, r)
	}
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		events: map[string]string{
			"AMB001":  `{"vehicle": "AMB001", "ts": 100, "distance_m": 150, "direction": "NS", "priority_triggered": true}`,
			"FIRT001": `{"vehicle": "FIRT001", "ts": 200, "distance_m": 300, "direction": "EW"}`,
		},
		state: `{"mode": "NORMAL", "direction": "NS"}`,
	}
}

var eventCmpOpts = []cmp.Option{
	cmp.AllowUnexported(Timestamp{}),
	cmpopts.IgnoreFields(Event{}, "Raw"),
}

func TestFetch(t *testing.T) {
	up := newFakeUpstream()
	srv := httptest.NewServer(up)
	defer srv.Close()

	f := NewFetcher(srv.URL+"/", srv.URL, 0)
	log := logger.NewBufferLogger()
	f.SetLogger(log)

	snap, err := f.Fetch(context.Background(), []string{"AMB001", "FIRT001"})
	require.NoError(t, err)

	want := []Event{
		{Vehicle: "AMB001", TS: TS("100"), Distance: Num(150), Direction: "NS", PriorityTriggered: true},
		{Vehicle: "FIRT001", TS: TS("200"), Distance: Num(300), Direction: "EW"},
	}
	if diff := cmp.Diff(want, snap.Events, eventCmpOpts...); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"AMB001", "FIRT001"}, snap.IDs)
	assert.Equal(t, "NORMAL", snap.Controller.Mode)
	assert.Equal(t, "NS", snap.Controller.Direction)
	assert.JSONEq(t, up.state, string(snap.Controller.Raw))
	assert.JSONEq(t, up.events["AMB001"], string(snap.Events[0].Raw))
	assert.False(t, snap.FetchedAt.IsZero())
	assert.EqualValues(t, 3, up.hits.Load(), "one request per vehicle plus controller state")
	assert.True(t, log.HasLevel("debug"))
}

func TestFetchSendsNoCacheHeaders(t *testing.T) {
	up := newFakeUpstream()
	srv := httptest.NewServer(up)
	defer srv.Close()

	f := NewFetcher(srv.URL, srv.URL, 0)
	_, err := f.Fetch(context.Background(), []string{"AMB001"})
	require.NoError(t, err)

	up.mu.Lock()
	defer up.mu.Unlock()
	require.Len(t, up.headers, 2)
	for _, h := range up.headers {
		assert.Equal(t, "no-cache, no-store", h.Get("Cache-Control"))
		assert.Equal(t, "no-cache", h.Get("Pragma"))
	}
}

func TestFetchNoDataYet(t *testing.T) {
	srv := httptest.NewServer(newFakeUpstream())
	defer srv.Close()

	f := NewFetcher(srv.URL, srv.URL, 0)
	snap, err := f.Fetch(context.Background(), []string{"UNKNOWN9"})
	require.NoError(t, err)

	e, ok := snap.Event("UNKNOWN9")
	require.True(t, ok)
	assert.False(t, e.Distance.Valid)
	assert.False(t, e.TS.Present())
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(up *fakeUpstream)
		wantMsg string
	}{
		{
			name: "one vehicle returns 500",
			setup: func(up *fakeUpstream) {
				up.failID = "FIRT001"
				up.failCode = http.StatusInternalServerError
			},
			wantMsg: "500",
		},
		{
			name: "controller returns invalid JSON",
			setup: func(up *fakeUpstream) {
				up.state = `{"mode": `
			},
			wantMsg: "decoding body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := newFakeUpstream()
			tt.setup(up)
			srv := httptest.NewServer(up)
			defer srv.Close()

			f := NewFetcher(srv.URL, srv.URL, 0)
			snap, err := f.Fetch(context.Background(), []string{"AMB001", "FIRT001"})
			require.Error(t, err)
			assert.Nil(t, snap, "a failed cycle never yields a partial snapshot")
			assert.True(t, errors.IsCode(err, errors.ErrFetch))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(newFakeUpstream())
	url := srv.URL
	srv.Close()

	f := NewFetcher(url, url, time.Second)
	_, err := f.Fetch(context.Background(), []string{"AMB001"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrFetch))
}

func TestFetchFirstFailureCancelsSiblings(t *testing.T) {
	up := newFakeUpstream()
	up.failID = "AMB001"
	up.failCode = http.StatusBadGateway
	// FIRT001 blocks until its request context is cancelled.
	up.block = make(chan struct{})

	srv := httptest.NewServer(up)
	defer srv.Close()
	defer close(up.block)

	f := NewFetcher(srv.URL, srv.URL, 0)

	done := make(chan error, 1)
	go func() {
		_, err := f.Fetch(context.Background(), []string{"AMB001", "FIRT001"})
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not return after the first failure")
	}
}

func TestFetchTimeout(t *testing.T) {
	up := newFakeUpstream()
	up.block = make(chan struct{})

	srv := httptest.NewServer(up)
	defer srv.Close()
	defer close(up.block)

	f := NewFetcher(srv.URL, srv.URL, 50*time.Millisecond)

	start := time.Now()
	_, err := f.Fetch(context.Background(), []string{"AMB001"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrFetch))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestFetchContextCancelled(t *testing.T) {
	srv := httptest.NewServer(newFakeUpstream())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(srv.URL, srv.URL, 0)
	_, err := f.Fetch(ctx, []string{"AMB001"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestURLs(t *testing.T) {
	f := NewFetcher("http://host:5000/", "http://ctl:5001", 0)
	assert.Equal(t, "http://host:5000/api/last_event?id=AMB001", f.EventURL("AMB001"))
	assert.Equal(t, "http://host:5000/api/last_event?id=A+B", f.EventURL("A B"))
	assert.Equal(t, "http://ctl:5001/api/state", f.StateURL())
}
