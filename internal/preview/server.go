// Package preview serves the destination tree over HTTP and rebuilds it when
// the source tree changes, notifying browsers over server-sent events.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/tutorialbuilder/internal/build"
	"git.home.luguber.info/inful/tutorialbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tutorialbuilder/internal/logfields"
	"git.home.luguber.info/inful/tutorialbuilder/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// Rebuild trigger labels.
const (
	TriggerInitial  = "initial"
	TriggerWatch    = "watch"
	TriggerSchedule = "schedule"
)

// Rebuilder runs one build pass.
type Rebuilder interface {
	Build(ctx context.Context) (*build.Report, error)
}

// Options controls the preview server.
type Options struct {
	Port            int
	LiveReload      bool
	RebuildInterval time.Duration
}

// OptionsFromConfig derives server options from the serve section.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Port:            cfg.Serve.Port,
		LiveReload:      cfg.Serve.LiveReloadEnabled(),
		RebuildInterval: cfg.Serve.RebuildInterval,
	}
}

// Server watches the source tree and serves the destination tree.
type Server struct {
	builder  Rebuilder
	cfg      *config.Config
	opts     Options
	hub      *LiveReloadHub
	recorder metrics.Recorder
	registry *prom.Registry
	logger   *slog.Logger
	status   buildStatus
	requests chan string

	addrMu sync.RWMutex
	addr   string
}

// New returns a server that rebuilds with b.
func New(b Rebuilder, cfg *config.Config, opts Options) *Server {
	s := &Server{
		builder:  b,
		cfg:      cfg,
		opts:     opts,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		requests: make(chan string, 1),
	}
	s.hub = NewLiveReloadHub(s.logger)
	return s
}

// WithLogger sets a custom logger.
func (s *Server) WithLogger(logger *slog.Logger) *Server {
	if logger != nil {
		s.logger = logger
		s.hub.logger = logger
	}
	return s
}

// WithMetrics exposes reg at /metrics and counts rebuild triggers on rec.
func (s *Server) WithMetrics(reg *prom.Registry, rec metrics.Recorder) *Server {
	s.registry = reg
	if rec != nil {
		s.recorder = rec
	}
	return s
}

// Hub returns the live-reload hub.
func (s *Server) Hub() *LiveReloadHub { return s.hub }

// Addr returns the listen address once Run has bound it.
func (s *Server) Addr() string {
	s.addrMu.RLock()
	defer s.addrMu.RUnlock()
	return s.addr
}

// Handler returns the HTTP routes of the preview server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	var site http.Handler = http.FileServer(http.Dir(s.cfg.DestRoot()))
	if s.opts.LiveReload {
		mux.Handle("/livereload", s.hub)
		mux.HandleFunc("/livereload.js", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			if _, err := w.Write([]byte(LiveReloadScript)); err != nil {
				s.logger.Error("failed to write livereload script", logfields.Error(err))
			}
		})
		site = injectLiveReload(site)
	}
	if s.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	}
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/", noCache(site))
	return chain(s.logger, mux)
}

type healthResponse struct {
	Status    string `json:"status"`
	LastBuild string `json:"last_build,omitempty"`
	BuildID   string `json:"build_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	report, err := s.status.get()
	resp := healthResponse{Status: "ok"}
	if report != nil {
		resp.LastBuild = string(report.Outcome)
		resp.BuildID = report.BuildID
	}
	if err != nil {
		resp.Status = "degraded"
		resp.Error = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Debug("healthz write", logfields.Error(err))
	}
}

// Run performs an initial build, then serves and rebuilds until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	srcRoot := s.cfg.SourceRoot()
	if st, err := os.Stat(srcRoot); err != nil || !st.IsDir() {
		return ferrors.ConfigError("source directory not found").
			WithContext("path", srcRoot).
			Build()
	}

	s.rebuild(ctx, TriggerInitial)

	watcher, err := newWatcher(srcRoot, s.logger)
	if err != nil {
		return ferrors.RuntimeError("failed to watch source tree").WithCause(err).Build()
	}
	defer func() { _ = watcher.Close() }()

	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(s.opts.Port)))
	if err != nil {
		return ferrors.RuntimeError("failed to listen").WithCause(err).
			WithContext("port", s.opts.Port).
			Build()
	}
	s.addrMu.Lock()
	s.addr = ln.Addr().String()
	s.addrMu.Unlock()

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second, IdleTimeout: 300 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	s.logger.Info("Preview server listening",
		slog.String("url", fmt.Sprintf("http://localhost:%d", ln.Addr().(*net.TCPAddr).Port)),
		logfields.Source(srcRoot),
		logfields.Dest(s.cfg.DestRoot()))

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		s.worker(ctx)
	}()

	var sched *Scheduler
	if s.opts.RebuildInterval > 0 {
		sched, err = NewScheduler(s.logger)
		if err == nil {
			_, err = sched.Every(s.opts.RebuildInterval, "periodic-rebuild", func() { s.Request(TriggerSchedule) })
		}
		if err != nil {
			s.logger.Warn("periodic rebuilds disabled", logfields.Error(err))
			sched = nil
		} else {
			sched.Start()
		}
	}

	debounce := newDebouncer(DebounceDelay, func() { s.Request(TriggerWatch) })

	runErr := s.watchLoop(ctx, watcher, debounce, serveErr)

	s.logger.Info("Shutting down preview server")
	debounce.Stop()
	if sched != nil {
		if err := sched.Stop(); err != nil {
			s.logger.Warn("scheduler shutdown error", logfields.Error(err))
		}
	}
	s.hub.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	<-workerDone
	return runErr
}

func (s *Server) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce *debouncer, serveErr <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-serveErr:
			if ok && err != nil {
				return ferrors.RuntimeError("preview server failed").WithCause(err).Build()
			}
			serveErr = nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleFileEvent(watcher, ev, debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (s *Server) handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, debounce *debouncer) {
	if shouldIgnoreEvent(ev.Name) || ev.Op == fsnotify.Chmod {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name, s.logger)
		}
	}
	s.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	debounce.Trigger()
}

// Request asks the worker for a rebuild. Requests arriving while one is
// queued collapse into it.
func (s *Server) Request(trigger string) {
	select {
	case s.requests <- trigger:
	default:
	}
}

// worker runs queued rebuilds one at a time until ctx ends.
func (s *Server) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case trigger := <-s.requests:
			s.rebuild(ctx, trigger)
		}
	}
}

func (s *Server) rebuild(ctx context.Context, trigger string) {
	s.recorder.IncRebuildTrigger(trigger)
	s.logger.Info("Rebuilding site", slog.String("trigger", trigger))
	report, err := s.builder.Build(ctx)
	if ctx.Err() != nil {
		return
	}
	s.status.set(report, err)
	now := time.Now().UnixNano()
	if err != nil {
		s.logger.Warn("rebuild failed", logfields.Error(err))
		s.hub.Broadcast(fmt.Sprintf("error:%d", now))
		return
	}
	s.hub.Broadcast(strconv.FormatInt(now, 10))
}

// buildStatus holds the outcome of the most recent build.
type buildStatus struct {
	mu     sync.RWMutex
	report *build.Report
	err    error
}

func (bs *buildStatus) set(report *build.Report, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.report = report
	bs.err = err
}

func (bs *buildStatus) get() (*build.Report, error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.report, bs.err
}
