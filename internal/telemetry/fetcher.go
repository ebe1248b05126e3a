// Package telemetry fetches vehicle events and controller state from the
// two upstream services. One Fetch call is one poll cycle: every request is
// issued concurrently and the cycle fails as a whole if any of them fails.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/pvdash/internal/errors"
	"github.com/rileyhilliard/pvdash/internal/logger"
)

// Upstream API paths.
const (
	LastEventPath       = "/api/last_event"
	ControllerStatePath = "/api/state"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 1 << 20

// Source is anything that can produce one cycle's snapshot.
// The dashboard depends on this instead of *Fetcher so cycles can be faked.
type Source interface {
	Fetch(ctx context.Context, ids []string) (*Snapshot, error)
}

// Fetcher polls the telemetry server and the traffic controller over HTTP.
type Fetcher struct {
	server     string
	controller string
	client     *http.Client
	log        logger.Logger
	now        func() time.Time
}

// NewFetcher creates a fetcher for the given base URLs.
// A zero timeout leaves requests unbounded except by the caller's context.
func NewFetcher(server, controller string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		server:     strings.TrimRight(server, "/"),
		controller: strings.TrimRight(controller, "/"),
		client:     &http.Client{Timeout: timeout},
		log:        logger.Noop(),
		now:        time.Now,
	}
}

// SetLogger sets the logger used for per-request debug output.
func (f *Fetcher) SetLogger(l logger.Logger) {
	if l != nil {
		f.log = l
	}
}

// SetHTTPClient replaces the HTTP client (tests, custom transports).
func (f *Fetcher) SetHTTPClient(c *http.Client) {
	if c != nil {
		f.client = c
	}
}

// EventURL returns the last_event URL for a vehicle.
func (f *Fetcher) EventURL(id string) string {
	return f.server + LastEventPath + "?" + url.Values{"id": {id}}.Encode()
}

// StateURL returns the controller state URL.
func (f *Fetcher) StateURL() string {
	return f.controller + ControllerStatePath
}

// Fetch runs one poll cycle: one event request per id plus one controller
// state request, all in flight at once. The first failure cancels the rest
// and the cycle returns a FETCH error; no partial snapshot is returned.
func (f *Fetcher) Fetch(ctx context.Context, ids []string) (*Snapshot, error) {
	start := f.now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make([]Event, len(ids))
	var state ControllerState

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			raw, err := f.getJSON(ctx, f.EventURL(id), &events[i])
			if err != nil {
				fail(err)
				return
			}
			events[i].Raw = raw
		}(i, id)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		raw, err := f.getJSON(ctx, f.StateURL(), &state)
		if err != nil {
			fail(err)
			return
		}
		state.Raw = raw
	}()

	wg.Wait()

	if firstErr != nil {
		f.log.Debug("fetch cycle failed after %s: %v", f.now().Sub(start), firstErr)
		return nil, errors.NewFetchCycleFailed(firstErr)
	}

	snap := &Snapshot{
		IDs:        append([]string(nil), ids...),
		Events:     events,
		Controller: state,
		FetchedAt:  f.now(),
	}
	snap.Elapsed = snap.FetchedAt.Sub(start)
	f.log.Debug("fetched %d events and controller state in %s", len(ids), snap.Elapsed)
	return snap, nil
}

// getJSON performs an uncached GET and decodes a JSON object into dst.
// The raw body is returned for display.
func (f *Fetcher) getJSON(ctx context.Context, rawURL string, dst interface{}) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("GET %s: %s", rawURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("GET %s: reading body: %w", rawURL, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return nil, fmt.Errorf("GET %s: decoding body: %w", rawURL, err)
	}
	return json.RawMessage(body), nil
}
