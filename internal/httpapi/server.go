package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"viewerd/internal/stack"
	"viewerd/internal/viewer"
	"viewerd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Studies() []types.Study
	Study(uid string) (types.Study, bool)
	Bind(vp int, req types.BindRequest) error
	Unbind(vp int) error
	Activate(vp int) error
	RouteProgress(imageID string, percent int) []int
	Status() types.StatusResponse
	Session() []types.SessionEntry
	Ready() bool
}

// NewMux builds the router. hub drives interactive surface events
// (navigation, settings) and may be nil when no in-process surfaces exist;
// events may be nil to disable the websocket stream.
func NewMux(svc Service, hub *viewer.Hub, events *EventHub) http.Handler {
	registerStatusCollector(svc)
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	// ListStudies godoc
	// @Summary List studies
	// @Produce json
	// @Success 200 {object} types.StudiesResponse
	// @Router /studies [get]
	r.Get("/studies", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.StudiesResponse{Studies: svc.Studies()})
	})

	r.Get("/studies/{studyUID}", func(w http.ResponseWriter, r *http.Request) {
		st, ok := svc.Study(chi.URLParam(r, "studyUID"))
		if !ok {
			writeJSONError(w, http.StatusNotFound, "study not found")
			return
		}
		writeJSON(w, http.StatusOK, st)
	})

	// BindViewport godoc
	// @Summary Bind a series to a viewport and start loading
	// @Accept json
	// @Produce json
	// @Param index path int true "viewport index"
	// @Param request body types.BindRequest true "bind request"
	// @Success 202 {object} types.ViewportStatus
	// @Failure 400 {object} types.ErrorResponse
	// @Failure 404 {object} types.ErrorResponse
	// @Router /viewports/{index}/bind [post]
	r.Post("/viewports/{index}/bind", func(w http.ResponseWriter, r *http.Request) {
		vp, ok := viewportParam(w, r)
		if !ok {
			return
		}
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.BindRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		start := time.Now()
		lvl := requestLogLevel(r)
		if err := svc.Bind(vp, req); err != nil {
			CountBind("rejected")
			status := bindErrorStatus(err)
			writeJSONError(w, status, err.Error())
			if lvl >= LevelInfo && zlog != nil {
				z := zlog.Info().Int("viewport", vp).Int("status", status).Dur("dur", time.Since(start))
				if rid := middleware.GetReqID(r.Context()); rid != "" {
					z = z.Str("request_id", rid)
				}
				z.Err(err).Msg("bind rejected")
			}
			return
		}
		CountBind("accepted")
		if lvl >= LevelInfo && zlog != nil {
			z := zlog.Info().Int("viewport", vp).Str("study", req.StudyUID).Str("series", req.SeriesUID)
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("bind accepted")
		}
		writeJSON(w, http.StatusAccepted, viewportStatus(svc, vp))
	})

	r.Delete("/viewports/{index}", func(w http.ResponseWriter, r *http.Request) {
		vp, ok := viewportParam(w, r)
		if !ok {
			return
		}
		if err := svc.Unbind(vp); err != nil {
			writeJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/viewports/{index}/activate", func(w http.ResponseWriter, r *http.Request) {
		vp, ok := viewportParam(w, r)
		if !ok {
			return
		}
		if err := svc.Activate(vp); err != nil {
			writeJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"active": vp})
	})

	r.Post("/viewports/{index}/navigate", func(w http.ResponseWriter, r *http.Request) {
		vp, ok := viewportParam(w, r)
		if !ok {
			return
		}
		if hub == nil {
			writeJSONError(w, http.StatusNotFound, "no interactive surfaces")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req struct {
			ImageID string `json:"image_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImageID == "" {
			writeJSONError(w, http.StatusBadRequest, "image_id is required")
			return
		}
		s, sok := hub.Local(vp)
		if !sok {
			writeJSONError(w, http.StatusNotFound, "viewport has no surface")
			return
		}
		s.NotifyNavigation(req.ImageID)
		writeJSON(w, http.StatusOK, viewportStatus(svc, vp))
	})

	r.Post("/viewports/{index}/settings", func(w http.ResponseWriter, r *http.Request) {
		vp, ok := viewportParam(w, r)
		if !ok {
			return
		}
		if hub == nil {
			writeJSONError(w, http.StatusNotFound, "no interactive surfaces")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.ViewSettings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		s, sok := hub.Local(vp)
		if !sok {
			writeJSONError(w, http.StatusNotFound, "viewport has no surface")
			return
		}
		s.ApplySettings(req)
		w.WriteHeader(http.StatusNoContent)
	})

	// Progress godoc
	// @Summary Route a fetch-progress broadcast to matching viewports
	// @Accept json
	// @Produce json
	// @Param request body types.ProgressRequest true "progress event"
	// @Success 200 {object} types.ProgressResponse
	// @Router /progress [post]
	r.Post("/progress", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.ProgressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImageID == "" {
			writeJSONError(w, http.StatusBadRequest, "image_id is required")
			return
		}
		hits := svc.RouteProgress(req.ImageID, req.Percent)
		if len(hits) > 0 {
			CountProgressRouted()
		}
		if hits == nil {
			hits = []int{}
		}
		writeJSON(w, http.StatusOK, types.ProgressResponse{Viewports: hits})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/session", func(w http.ResponseWriter, r *http.Request) {
		entries := svc.Session()
		if entries == nil {
			entries = []types.SessionEntry{}
		}
		writeJSON(w, http.StatusOK, types.SessionResponse{Entries: entries})
	})

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && zlog != nil {
		zlog.Error().Err(err).Msg("encode response")
	}
}

func viewportParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	vp, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || vp < 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid viewport index")
		return 0, false
	}
	return vp, true
}

// viewportStatus projects one slot out of the full status response.
func viewportStatus(svc Service, vp int) types.ViewportStatus {
	for _, vs := range svc.Status().Viewports {
		if vs.Index == vp {
			return vs
		}
	}
	return types.ViewportStatus{Index: vp, State: "empty"}
}

// bindErrorStatus maps well-known coordinator errors to HTTP status codes.
func bindErrorStatus(err error) int {
	switch {
	case viewer.IsStudyNotFound(err), viewer.IsSeriesNotFound(err), viewer.IsViewportNotFound(err):
		return http.StatusNotFound
	case stack.IsInvalidRequest(err):
		return http.StatusBadRequest
	default:
		if he, ok := err.(HTTPError); ok {
			return he.StatusCode()
		}
		return http.StatusInternalServerError
	}
}
