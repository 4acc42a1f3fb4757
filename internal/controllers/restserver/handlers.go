package restserver

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/chrissnell/feedercast/internal/constants"
	"github.com/chrissnell/feedercast/internal/meals"
	"github.com/chrissnell/feedercast/internal/timestamp"
	"github.com/chrissnell/feedercast/pkg/responseformat"
)

// maxBodyBytes bounds the size of a /predict request body
const maxBodyBytes = 1 << 16

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// Predict handles POST /predict
func (h *Handlers) Predict(w http.ResponseWriter, req *http.Request) {
	var body PredictRequest
	dec := json.NewDecoder(io.LimitReader(req.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		h.badRequest(w, req, errors.New("invalid request body, expected {\"last\": \"YYYY-MM-DD\"}"))
		return
	}

	result, err := h.controller.Pipeline.Forecast(req.Context(), body.Last)
	if err != nil {
		h.badRequest(w, req, err)
		return
	}

	h.formatter.WriteResponse(w, req, http.StatusOK, PredictResponse{
		NextRefill:    result.NextRefill.Format(timestamp.OutputLayout),
		IntervalHours: math.Round(result.IntervalHours*100) / 100,
	})
}

// GetMeals handles GET /meals
func (h *Handlers) GetMeals(w http.ResponseWriter, req *http.Request) {
	report, err := meals.Load(req.Context(), h.controller.MealsConfig, h.controller.Timestamps)
	if err != nil {
		h.badRequest(w, req, err)
		return
	}
	h.formatter.WriteResponse(w, req, http.StatusOK, report)
}

// Health handles GET /healthz
func (h *Handlers) Health(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, http.StatusOK, HealthResponse{Status: "ok", Version: constants.Version})
}

// ServeSPA serves files from the static directory, falling back to index.html
// so that client-side routes resolve to the front-end application
func (h *Handlers) ServeSPA(w http.ResponseWriter, req *http.Request) {
	staticDir := h.controller.serverConfig.StaticDir
	root := http.Dir(staticDir)

	name := path.Clean("/" + req.URL.Path)
	if name != "/" {
		if f, err := root.Open(name); err == nil {
			info, statErr := f.Stat()
			f.Close()
			if statErr == nil && !info.IsDir() {
				http.FileServer(root).ServeHTTP(w, req)
				return
			}
		}
	}

	index := filepath.Join(staticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		h.NotFound(w, req)
		return
	}
	http.ServeFile(w, req, index)
}

// NotFound writes a JSON 404
func (h *Handlers) NotFound(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteError(w, req, http.StatusNotFound, "not found")
}

// MethodNotAllowed writes a JSON 405
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteError(w, req, http.StatusMethodNotAllowed, "method not allowed")
}

func (h *Handlers) badRequest(w http.ResponseWriter, req *http.Request, err error) {
	h.controller.logger.Warnw("request failed",
		"path", req.URL.Path,
		"request_id", requestID(req),
		"error", err)
	h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
}
