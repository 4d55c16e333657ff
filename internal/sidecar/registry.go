package sidecar

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Sink receives the events forwarded to the presentation layer.
type Sink interface {
	Emit(event string, payload any) error
}

type StartStatus int

const (
	Started StartStatus = iota + 1
	AlreadyRunning
)

type StartResult struct {
	Status StartStatus
	Pid    int
}

type StopResult int

const (
	Terminated StopResult = iota + 1
	NotRunning
)

func (r StopResult) String() string {
	switch r {
	case Terminated:
		return "terminated"
	case NotRunning:
		return "not running"
	}

	return "unknown"
}

type handle struct {
	process Process
}

// Registry holds the handle of the single supervised sidecar. All start
// and stop decisions are serialized by one lock, so at most one sidecar
// process exists at any time.
type Registry struct {
	mu      sync.Mutex
	current *handle

	name      string
	keepStale bool
	launcher  Launcher
	sink      Sink

	// relays counts running relays; idle is closed when it drops to zero
	relays int
	idle   chan struct{}

	log *zap.Logger
}

type Params struct {
	// Config is the sidecar configuration
	Config Config

	// Launcher spawns the sidecar process
	Launcher Launcher

	// Sink receives the output of the sidecar
	Sink Sink

	// Log is the logger to use for the registry
	Log *zap.Logger
}

func NewRegistry(params Params) *Registry {
	name := params.Config.Name
	if name == "" {
		name = params.Config.Command
	}

	return &Registry{
		name:      name,
		keepStale: params.Config.KeepStaleHandle,
		launcher:  params.Launcher,
		sink:      params.Sink,
		log:       params.Log,
	}
}

// Start launches the sidecar unless one is already running, in which case
// it succeeds without launching. On success the output of the new process
// is relayed to the sink until its streams close.
func (r *Registry) Start(ctx context.Context) (StartResult, error) {
	h, result, err := r.launch(ctx)
	if err != nil {
		r.log.Error("failed to launch sidecar", zap.Error(err))
		return result, err
	}

	if h == nil {
		r.log.Debug("sidecar already running", zap.Int("pid", result.Pid))
		return result, nil
	}

	r.log.Info("sidecar started", zap.Int("pid", result.Pid))

	go func() {
		defer r.relayDone()
		// channels closed without an exit report still release the handle
		defer r.forget(h)

		exited := func() { r.forget(h) }
		relay(h.process.Events(), r.sink, exited, r.log.Named("relay").With(zap.Int("pid", result.Pid)))
	}()

	return result, nil
}

// launch performs check-then-launch under the lock. It returns a nil
// handle if a sidecar was already running.
func (r *Registry) launch(ctx context.Context) (*handle, StartResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		return nil, StartResult{
			Status: AlreadyRunning,
			Pid:    r.current.process.Pid(),
		}, nil
	}

	process, err := r.launcher.Launch(ctx)
	if err != nil {
		return nil, StartResult{}, &LaunchError{Name: r.name, Err: err}
	}

	h := &handle{process: process}
	r.current = h

	if r.relays == 0 {
		r.idle = make(chan struct{})
	}
	r.relays++

	return h, StartResult{
		Status: Started,
		Pid:    process.Pid(),
	}, nil
}

// Stop removes the current handle, if any, and kills its process without
// waiting for it to exit. Kill failures are not reported, as a process
// that is already gone satisfies the request.
func (r *Registry) Stop() StopResult {
	h := r.take()
	if h == nil {
		r.log.Debug("sidecar not running")
		return NotRunning
	}

	log := r.log.With(zap.Int("pid", h.process.Pid()))

	if err := h.process.Kill(); err != nil {
		log.Debug("kill failed", zap.Error(err))
	}

	log.Info("sidecar terminated")

	return Terminated
}

func (r *Registry) take() *handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.current
	r.current = nil

	return h
}

// forget clears the registry after the process of h exited on its own.
// A handle that was replaced in the meantime is left untouched.
func (r *Registry) forget(h *handle) {
	if r.keepStale {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == h {
		r.log.Warn("sidecar exited unexpectedly", zap.Int("pid", h.process.Pid()))
		r.current = nil
	}
}

// Running reports whether a sidecar handle is currently held.
func (r *Registry) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current != nil
}

// Pid returns the pid of the current sidecar, or 0 if none is running.
func (r *Registry) Pid() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return 0
	}

	return r.current.process.Pid()
}

func (r *Registry) relayDone() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.relays--
	if r.relays == 0 {
		close(r.idle)
	}
}

// Wait blocks until all relays have finished or ctx is done.
func (r *Registry) Wait(ctx context.Context) error {
	r.mu.Lock()
	if r.relays == 0 {
		r.mu.Unlock()
		return nil
	}
	idle := r.idle
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-idle:
		return nil
	}
}
