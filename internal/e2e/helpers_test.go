package e2e

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"viewerd/internal/httpapi"
	"viewerd/internal/studystore"
	"viewerd/internal/viewer"
	"viewerd/pkg/types"
)

// newImageServer serves fake pixel payloads and records which paths were hit.
func newImageServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("pixels:" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), paths...)
	}
}

func testStudies() []types.Study {
	return []types.Study{{
		StudyUID: "1.2.840.100",
		Series: []types.Series{
			{
				SeriesUID: "1.2.840.100.1",
				Instances: []types.Instance{
					{SOPInstanceUID: "a", FrameOfReferenceUID: "f1", ImageOrientation: []float64{1, 0, 0, 0, 1, 0}},
					{SOPInstanceUID: "b", FrameOfReferenceUID: "f1", ImageOrientation: []float64{1, 0, 0, 0, 1, 0}},
					{SOPInstanceUID: "c", FrameOfReferenceUID: "f1", ImageOrientation: []float64{1, 0, 0, 0, 1, 0}},
				},
			},
			{
				SeriesUID: "1.2.840.100.2",
				Instances: []types.Instance{
					{SOPInstanceUID: "solo"},
				},
			},
		},
	}}
}

// newStack wires the full in-process server: store, fetcher, prefetch
// engine, coordinator, and HTTP mux.
func newStack(t *testing.T, imageBaseURL string) (*httptest.Server, *viewer.Coordinator) {
	t.Helper()
	store := studystore.NewFromStudies(testStudies())
	fetcher := viewer.NewHTTPFetcher(imageBaseURL)
	log := zerolog.Nop()
	engine, err := viewer.NewEngine(fetcher, 64, 2, log)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	events := httpapi.NewEventHub()
	coord := viewer.NewWithConfig(viewer.Config{
		Store:          store,
		Fetcher:        fetcher,
		Prefetch:       engine,
		Publisher:      events,
		Logger:         &log,
		MaxViewports:   4,
		ReferenceLines: true,
	})
	t.Cleanup(coord.Close)
	t.Cleanup(events.Close)

	srv := httptest.NewServer(httpapi.NewMux(coord, coord.SurfaceHub(), events))
	t.Cleanup(srv.Close)
	return srv, coord
}

// waitForState polls the coordinator until a viewport reaches want.
func waitForState(t *testing.T, c *viewer.Coordinator, vp int, want viewer.State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.ViewportState(vp) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("viewport %d never reached state %q (now %q)", vp, want, c.ViewportState(vp))
}
