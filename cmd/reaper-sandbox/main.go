// Command reaper-sandbox serves an emulated REAPER web interface for local
// development and tests of the SDK.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reaper-setlist/reaper_sdk_go/internal/cli"
	"github.com/reaper-setlist/reaper_sdk_go/internal/hoststate"
	"github.com/reaper-setlist/reaper_sdk_go/internal/logger"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper/mock"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper_sdk"
)

type options struct {
	addr          string
	backend       string
	path          string
	seed          string
	latency       time.Duration
	fail          string
	maxRequest    int
	projectLength float64
	logFormat     string
	logLevel      zapcore.Level
}

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var o options
	return cli.NewCommand(viper.New(), &cli.Program{
		Name:  "reaper-sandbox",
		Short: "Serve an emulated REAPER web interface",
		Run: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), o)
		},
		Opts: []cli.Opt{
			cli.NewOpt(&o.addr, "addr", ":8080", "listen address"),
			cli.NewOpt(&o.backend, "backend", string(hoststate.KindMemory), "persisted state backend: memory, bolt or badger"),
			cli.NewOpt(&o.path, "path", "", "bolt file or badger directory for persisted state"),
			cli.NewOpt(&o.seed, "seed", "", "path to a JSON seed of records per section"),
			cli.NewOpt(&o.latency, "latency", time.Duration(0), "artificial latency to inject per request"),
			cli.NewOpt(&o.fail, "fail", "", "failure injection (rate=<float>,code=<httpStatus>)"),
			cli.NewOpt(&o.maxRequest, "max-request-length", 0, "reject command paths longer than this many bytes with 414"),
			cli.NewOpt(&o.projectLength, "project-length", 240.0, "length in seconds of the emulated project"),
			cli.NewOpt(&o.logFormat, "log-format", "auto", "log format: console or json"),
			cli.NewOpt(&o.logLevel, "log-level", zapcore.InfoLevel, "log level"),
		},
	})
}

func run(ctx context.Context, o options) (err error) {
	log, err := logger.Config{Format: o.logFormat, Level: o.logLevel}.New(os.Stderr)
	if err != nil {
		return err
	}
	defer log.Sync()

	failCfg, err := parseFailConfig(o.fail)
	if err != nil {
		return fmt.Errorf("parse fail flag: %w", err)
	}

	backend, err := hoststate.Open(hoststate.Kind(o.backend), o.path)
	if err != nil {
		return err
	}
	host := mock.New(
		mock.WithBackend(backend),
		mock.WithMaxRequestLength(o.maxRequest),
		mock.WithProjectLength(o.projectLength),
		mock.WithLogger(log.With(zap.String("service", "host"))),
	)
	defer func() { err = multierr.Append(err, host.Close()) }()

	if o.seed != "" {
		seed, err := reaper_sdk.LoadSeed(o.seed)
		if err != nil {
			return fmt.Errorf("load seed: %w", err)
		}
		if err := seed.Apply(host); err != nil {
			return fmt.Errorf("apply seed: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	m := newMetrics(host)
	reg.MustRegister(m.collectors()...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	commands := withMiddleware(o.latency, failCfg, m, log, host)
	// Command paths carry escaped slashes and must not be cleaned by the mux.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.EscapedPath(), "/_/") {
			commands.ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})

	ln, err := net.Listen("tcp", o.addr)
	if err != nil {
		return err
	}
	server := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	log.Info("Listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("backend", o.backend),
		zap.Duration("latency", o.latency),
		zap.Float64("fail_rate", failCfg.rate))
	hostport := o.addr
	if strings.HasPrefix(hostport, ":") {
		hostport = "localhost" + hostport
	}
	fmt.Println()
	fmt.Println("export REAPER_RUNTIME_MODE=http")
	fmt.Printf("export REAPER_URL=http://%s\n", hostport)
	fmt.Println()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- server.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
