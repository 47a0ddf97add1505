package health

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inHttp "github.com/Alturino/shopping-cart/internal/http"
	"github.com/Alturino/shopping-cart/internal/log"
	"github.com/Alturino/shopping-cart/internal/otel"
)

const (
	statusOk          = "ok"
	statusUnavailable = "unavailable"

	readinessTimeout = 2 * time.Second
)

// Check reports whether a dependency can serve requests.
type Check func(c context.Context) error

type Info struct {
	Service string
	Version string
	Commit  string
}

type Memory struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"totalAlloc"`
	Sys        uint64 `json:"sys"`
	HeapAlloc  uint64 `json:"heapAlloc"`
	NumGC      uint32 `json:"numGC"`
}

type Payload struct {
	Status    string  `json:"status"`
	Service   string  `json:"service"`
	Version   *string `json:"version"`
	Commit    *string `json:"commit"`
	Pid       int     `json:"pid"`
	Uptime    int64   `json:"uptime"`
	Timestamp string  `json:"timestamp"`
	Memory    Memory  `json:"memory"`
}

type Status struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

type HealthController struct {
	info    Info
	started time.Time
	checks  map[string]Check
}

func AttachHealthController(router *mux.Router, info Info, checks map[string]Check) {
	controller := HealthController{info: info, started: time.Now(), checks: checks}

	router.HandleFunc("/health", controller.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/live", controller.Live).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", controller.Ready).Methods(http.MethodGet)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (h HealthController) Health(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "HealthController Health")
	defer span.End()

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	inHttp.WriteJsonResponse(c, w, http.StatusOK, map[string]string{}, Payload{
		Status:    statusOk,
		Service:   h.info.Service,
		Version:   optional(h.info.Version),
		Commit:    optional(h.info.Commit),
		Pid:       os.Getpid(),
		Uptime:    int64(time.Since(h.started).Round(time.Second).Seconds()),
		Timestamp: time.Now().UTC().Format(inHttp.TimestampFormat),
		Memory: Memory{
			Alloc:      stats.Alloc,
			TotalAlloc: stats.TotalAlloc,
			Sys:        stats.Sys,
			HeapAlloc:  stats.HeapAlloc,
			NumGC:      stats.NumGC,
		},
	})
}

func (h HealthController) Live(w http.ResponseWriter, r *http.Request) {
	inHttp.WriteJsonResponse(r.Context(), w, http.StatusOK, map[string]string{}, Status{Status: statusOk})
}

// Ready runs every check and answers 503 naming the failed components when any of them fails.
func (h HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "HealthController Ready")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "HealthController Ready").Logger()

	c, cancel := context.WithTimeout(c, readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := map[string]string{}
	for _, name := range names {
		if err := h.checks[name](c); err != nil {
			logger.Warn().Err(err).Str("component", name).Msg("readiness check failed")
			failed[name] = statusUnavailable
		}
	}
	if len(failed) > 0 {
		inHttp.WriteJsonResponse(
			c,
			w,
			http.StatusServiceUnavailable,
			map[string]string{},
			Status{Status: statusUnavailable, Components: failed},
		)
		return
	}

	inHttp.WriteJsonResponse(c, w, http.StatusOK, map[string]string{}, Status{Status: statusOk})
}
