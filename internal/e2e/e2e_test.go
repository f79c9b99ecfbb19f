package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"viewerd/internal/viewer"
	"viewerd/pkg/types"
)

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestE2E_BindLoadsCursorImage(t *testing.T) {
	images, hits := newImageServer(t)
	srv, coord := newStack(t, images.URL)

	resp := postJSON(t, srv.URL+"/viewports/0/bind", types.BindRequest{
		StudyUID:   "1.2.840.100",
		SeriesUID:  "1.2.840.100.1",
		StartIndex: 1,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("bind status = %d, want 202", resp.StatusCode)
	}

	waitForState(t, coord, 0, viewer.StateDisplayed)

	// Only the cursor image (SOP "b") should have been fetched.
	got := hits()
	if len(got) != 1 || !strings.Contains(got[0], "b") {
		t.Fatalf("fetched paths = %v, want exactly the cursor image", got)
	}

	var status types.StatusResponse
	decodeInto(t, mustGet(t, srv.URL+"/status"), &status)
	if len(status.Viewports) != 1 || status.Viewports[0].State != "displayed" {
		t.Fatalf("status = %+v", status)
	}
	if status.Viewports[0].CurrentIndex != 1 {
		t.Fatalf("current index = %d, want 1", status.Viewports[0].CurrentIndex)
	}
}

func TestE2E_BindUnknownStudyIs404(t *testing.T) {
	images, _ := newImageServer(t)
	srv, _ := newStack(t, images.URL)

	resp := postJSON(t, srv.URL+"/viewports/0/bind", types.BindRequest{
		StudyUID:  "no-such-study",
		SeriesUID: "whatever",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestE2E_ActivationStartsPrefetch(t *testing.T) {
	images, hits := newImageServer(t)
	srv, coord := newStack(t, images.URL)

	resp := postJSON(t, srv.URL+"/viewports/1/bind", types.BindRequest{
		StudyUID:  "1.2.840.100",
		SeriesUID: "1.2.840.100.1",
	})
	resp.Body.Close()
	waitForState(t, coord, 1, viewer.StateDisplayed)

	resp = postJSON(t, srv.URL+"/viewports/1/activate", struct{}{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("activate status = %d, want 200", resp.StatusCode)
	}

	// Prefetch walks outward from the cursor; wait for neighbors to land.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(hits()) >= 3 { // cursor + two neighbors within the window
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := hits(); len(got) < 3 {
		t.Fatalf("fetched paths = %v, want cursor plus prefetched neighbors", got)
	}

	var status types.StatusResponse
	decodeInto(t, mustGet(t, srv.URL+"/status"), &status)
	if status.ActiveViewport != 1 {
		t.Fatalf("active viewport = %d, want 1", status.ActiveViewport)
	}
}

func TestE2E_NavigationPersistsIndex(t *testing.T) {
	images, _ := newImageServer(t)
	srv, coord := newStack(t, images.URL)

	resp := postJSON(t, srv.URL+"/viewports/0/bind", types.BindRequest{
		StudyUID:  "1.2.840.100",
		SeriesUID: "1.2.840.100.1",
	})
	resp.Body.Close()
	waitForState(t, coord, 0, viewer.StateDisplayed)

	resp = postJSON(t, srv.URL+"/viewports/0/navigate", map[string]string{"image_id": "wado:c"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("navigate status = %d, want 200", resp.StatusCode)
	}

	var session types.SessionResponse
	decodeInto(t, mustGet(t, srv.URL+"/session"), &session)
	found := false
	for _, e := range session.Entries {
		if e.Viewport == 0 && e.Key == "image_index" {
			found = true
			// JSON round-trips ints through float64.
			if n, ok := e.Value.(float64); !ok || int(n) != 2 {
				t.Fatalf("persisted index = %v, want 2", e.Value)
			}
		}
	}
	if !found {
		t.Fatal("no image_index entry in session")
	}
}

func TestE2E_ProgressRoutesToBoundViewport(t *testing.T) {
	images, _ := newImageServer(t)
	srv, _ := newStack(t, images.URL)

	// The single-image series completes quickly, so route progress for an
	// id no viewport is loading: the response must be an empty list.
	resp := postJSON(t, srv.URL+"/progress", types.ProgressRequest{ImageID: "wado:unknown", Percent: 50})
	var out types.ProgressResponse
	decodeInto(t, resp, &out)
	if len(out.Viewports) != 0 {
		t.Fatalf("viewports = %v, want none", out.Viewports)
	}
}

func TestE2E_UnbindClearsSlot(t *testing.T) {
	images, _ := newImageServer(t)
	srv, coord := newStack(t, images.URL)

	resp := postJSON(t, srv.URL+"/viewports/2/bind", types.BindRequest{
		StudyUID:  "1.2.840.100",
		SeriesUID: "1.2.840.100.2",
	})
	resp.Body.Close()
	waitForState(t, coord, 2, viewer.StateDisplayed)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/viewports/2", nil)
	dresp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	dresp.Body.Close()
	if dresp.StatusCode != http.StatusNoContent {
		t.Fatalf("unbind status = %d, want 204", dresp.StatusCode)
	}

	if got := coord.ViewportState(2); got != viewer.StateEmpty {
		t.Fatalf("state after unbind = %q, want empty", got)
	}
}

func mustGet(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	return resp
}
