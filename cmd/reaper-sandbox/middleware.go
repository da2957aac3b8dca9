package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper/mock"
)

type failConfig struct {
	rate float64
	code int
}

type metrics struct {
	requests *prometheus.CounterVec
	injected prometheus.Counter
	commands prometheus.CounterFunc
}

func newMetrics(host *mock.Host) *metrics {
	return &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reaper",
			Subsystem: "sandbox",
			Name:      "requests_total",
			Help:      "Number of command requests served, by status code.",
		}, []string{"code"}),
		injected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reaper",
			Subsystem: "sandbox",
			Name:      "injected_failures_total",
			Help:      "Number of requests failed on purpose.",
		}),
		commands: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "reaper",
			Subsystem: "sandbox",
			Name:      "commands_total",
			Help:      "Number of commands executed by the emulated host.",
		}, func() float64 { return float64(host.Commands()) }),
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.injected, m.commands}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func withMiddleware(delay time.Duration, failCfg failConfig, m *metrics, log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			time.Sleep(delay)
		}
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		defer func() {
			m.requests.WithLabelValues(strconv.Itoa(rec.code)).Inc()
		}()
		if failCfg.rate > 0 && rand.Float64() < failCfg.rate {
			status := failCfg.code
			if status == 0 {
				status = http.StatusInternalServerError
			}
			m.injected.Inc()
			log.Debug("Injecting failure", zap.Int("status", status))
			http.Error(rec, "failure injected", status)
			return
		}
		log.Debug("Executing request", zap.Int("path_len", len(r.URL.EscapedPath())))
		next.ServeHTTP(rec, r)
	})
}

func parseFailConfig(raw string) (failConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return failConfig{}, nil
	}
	cfg := failConfig{code: http.StatusInternalServerError}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keyVal := strings.SplitN(part, "=", 2)
		if len(keyVal) != 2 {
			return failConfig{}, fmt.Errorf("invalid fail segment %q", part)
		}
		switch strings.TrimSpace(keyVal[0]) {
		case "rate":
			val, err := strconv.ParseFloat(strings.TrimSpace(keyVal[1]), 64)
			if err != nil {
				return failConfig{}, err
			}
			if val < 0 || val > 1 {
				return failConfig{}, fmt.Errorf("fail rate %v out of range [0,1]", val)
			}
			cfg.rate = val
		case "code":
			val, err := strconv.Atoi(strings.TrimSpace(keyVal[1]))
			if err != nil {
				return failConfig{}, err
			}
			cfg.code = val
		default:
			return failConfig{}, fmt.Errorf("unknown fail key %q", keyVal[0])
		}
	}
	return cfg, nil
}
