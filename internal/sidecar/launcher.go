package sidecar

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
)

// Launcher spawns the sidecar process.
type Launcher interface {
	Launch(ctx context.Context) (Process, error)
}

// Process is a handle to a launched sidecar.
type Process interface {
	// Pid returns the operating system process id.
	Pid() int

	// Kill forcefully terminates the process. It does not wait
	// for the process to exit.
	Kill() error

	// Events returns the channel on which the output of the process is
	// delivered. The channel is closed once both output streams are
	// drained and the process has exited.
	Events() <-chan Event
}

type ExecLauncher struct {
	config Config
	log    *zap.Logger
}

var _ Launcher = (*ExecLauncher)(nil)

func NewExecLauncher(config Config, log *zap.Logger) *ExecLauncher {
	return &ExecLauncher{
		config: config,
		log:    log.Named("launcher"),
	}
}

// Launch resolves the configured executable and starts it. The process is
// not bound to ctx; ctx only aborts the launch if it is already done.
func (l *ExecLauncher) Launch(ctx context.Context) (Process, error) {
	if ctx.Err() != nil {
		return nil, fmt.Errorf("launch aborted: %w", ctx.Err())
	}

	path, err := l.resolve()
	if err != nil {
		return nil, err
	}

	l.log.With(
		zap.String("path", path),
		zap.Strings("args", l.config.Args),
		zap.String("cwd", l.config.Cwd),
	).Debug("starting sidecar process")

	return startProc(path, l.config, l.log)
}

func (l *ExecLauncher) resolve() (string, error) {
	if l.config.Command != "" {
		return exec.LookPath(l.config.Command)
	}

	name := l.config.Name
	if name == "" {
		return "", ErrNoExecutable
	}

	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if l.config.Cwd != "" {
		dirs = append(dirs, l.config.Cwd)
	}

	for _, dir := range dirs {
		for _, candidate := range candidateNames(name) {
			path := filepath.Join(dir, candidate)
			if isExecutableFile(path) {
				return path, nil
			}
		}
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("sidecar %q not found: %w", name, err)
	}

	return path, nil
}

// candidateNames lists the file names a bundled sidecar may have, plain
// or suffixed with the platform it was built for.
func candidateNames(name string) []string {
	names := []string{
		name,
		fmt.Sprintf("%s-%s-%s", name, runtime.GOOS, runtime.GOARCH),
	}

	if runtime.GOOS == "windows" {
		for i := range names {
			names[i] += ".exe"
		}
	}

	return names
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	if !info.Mode().IsRegular() {
		return false
	}

	if runtime.GOOS == "windows" {
		return true
	}

	return info.Mode().Perm()&0o111 != 0
}
