package httpapi

import (
	"errors"
	"io"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/njchilds90/symcalc/internal/logging"
	"github.com/njchilds90/symcalc/internal/middleware"
	"github.com/njchilds90/symcalc/internal/service"
)

type handlers struct {
	svc          *service.Service
	logger       *logrus.Logger
	maxBodyBytes int64
	started      time.Time
}

func (h *handlers) solve(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	res := h.svc.Solve(r.Context(), field(body, "equation"), field(body, "variable"))
	h.respond(w, r, res)
}

func (h *handlers) derivative(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	res := h.svc.Differentiate(r.Context(), field(body, "expression"), field(body, "variable"))
	h.respond(w, r, res)
}

func (h *handlers) integrate(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	res := h.svc.Integrate(r.Context(), field(body, "expression"), field(body, "variable"))
	h.respond(w, r, res)
}

func (h *handlers) respond(w http.ResponseWriter, r *http.Request, res service.Result) {
	if !res.IsOk() {
		logging.FromContext(r.Context(), h.logger).WithFields(logrus.Fields{
			"kind":  res.Err.Kind,
			"error": res.Err.Message,
		}).Debug("request rejected")
		middleware.WriteError(w, http.StatusBadRequest, res.Err.Message)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"result": res.Value})
}

// readBody reads at most maxBodyBytes and rejects malformed JSON. An empty
// body is accepted; its fields read as empty strings.
func (h *handlers) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusBadRequest, "request body too large")
		} else {
			middleware.WriteError(w, http.StatusBadRequest, "cannot read request body")
		}
		return nil, false
	}
	if len(body) > 0 && !gjson.ValidBytes(body) {
		middleware.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	return body, true
}

// field returns a string member of the request body. Missing and null read
// as "", and non-string values are passed through as their JSON text so
// {"expression": 3} still parses.
func field(body []byte, name string) string {
	v := gjson.GetBytes(body, name)
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.String()
	default:
		return v.Raw
	}
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":         "ok",
		"time":           time.Now().UTC().Format(time.RFC3339),
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := p.MemoryInfo(); err == nil {
			resp["rss_bytes"] = mem.RSS
		}
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}
