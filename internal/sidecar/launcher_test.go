//go:build !windows

package sidecar_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lambda-feedback/deskshell/internal/sidecar"
	"github.com/lambda-feedback/deskshell/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func collect(t *testing.T, process sidecar.Process) []sidecar.Event {
	t.Helper()

	var events []sidecar.Event

	timeout := time.After(5 * time.Second)

	for {
		select {
		case evt, ok := <-process.Events():
			if !ok {
				return events
			}
			events = append(events, evt)
		case <-timeout:
			t.Fatal("process did not terminate")
			return nil
		}
	}
}

func output(events []sidecar.Event, kind sidecar.EventKind) string {
	var out []byte
	for _, evt := range events {
		if evt.Kind == kind {
			out = append(out, evt.Data...)
		}
	}
	return string(out)
}

func TestExecLauncher_Launch_RelaysStreams(t *testing.T) {
	l := sidecar.NewExecLauncher(sidecar.Config{
		Command: "sh",
		Args:    []string{"-c", `echo hello; >&2 echo warn`},
	}, zap.NewNop())

	process, err := l.Launch(context.Background())
	require.NoError(t, err)
	require.NotZero(t, process.Pid())

	events := collect(t, process)
	require.NotEmpty(t, events)

	assert.Equal(t, "hello\n", output(events, sidecar.EventStdout))
	assert.Equal(t, "warn\n", output(events, sidecar.EventStderr))

	last := events[len(events)-1]
	assert.Equal(t, sidecar.EventTerminated, last.Kind)
	require.NotNil(t, last.Exit.Code)
	assert.Equal(t, 0, *last.Exit.Code)
}

func TestExecLauncher_Launch_ReportsExitCode(t *testing.T) {
	l := sidecar.NewExecLauncher(sidecar.Config{
		Command: "sh",
		Args:    []string{"-c", "exit 3"},
	}, zap.NewNop())

	process, err := l.Launch(context.Background())
	require.NoError(t, err)

	events := collect(t, process)
	last := events[len(events)-1]

	require.NotNil(t, last.Exit.Code)
	assert.Equal(t, 3, *last.Exit.Code)
}

func TestExecLauncher_Launch_PassesEnv(t *testing.T) {
	l := sidecar.NewExecLauncher(sidecar.Config{
		Command: "sh",
		Args:    []string{"-c", `printf "%s" "$SIDECAR_PORT"`},
		Env:     map[string]string{"SIDECAR_PORT": "8008"},
	}, zap.NewNop())

	process, err := l.Launch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "8008", output(collect(t, process), sidecar.EventStdout))
}

func TestExecLauncher_Launch_SplitsChunks(t *testing.T) {
	l := sidecar.NewExecLauncher(sidecar.Config{
		Command:   "sh",
		Args:      []string{"-c", `printf "0123456789"`},
		ChunkSize: 4,
	}, zap.NewNop())

	process, err := l.Launch(context.Background())
	require.NoError(t, err)

	events := collect(t, process)
	for _, evt := range events {
		assert.LessOrEqual(t, len(evt.Data), 4)
	}

	assert.Equal(t, "0123456789", output(events, sidecar.EventStdout))
}

func TestExecLauncher_Launch_ResolvesNameInCwd(t *testing.T) {
	dir := t.TempDir()

	script := filepath.Join(dir, "backend")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho bundled\n"), 0o755))

	l := sidecar.NewExecLauncher(sidecar.Config{
		Name: "backend",
		Cwd:  dir,
	}, zap.NewNop())

	process, err := l.Launch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "bundled\n", output(collect(t, process), sidecar.EventStdout))
}

func TestExecLauncher_Launch_MissingExecutable(t *testing.T) {
	l := sidecar.NewExecLauncher(sidecar.Config{
		Name: "deskshell-sidecar-that-does-not-exist",
		Cwd:  t.TempDir(),
	}, zap.NewNop())

	_, err := l.Launch(context.Background())
	assert.Error(t, err)
}

func TestExecLauncher_Launch_NoExecutable(t *testing.T) {
	l := sidecar.NewExecLauncher(sidecar.Config{}, zap.NewNop())

	_, err := l.Launch(context.Background())
	assert.ErrorIs(t, err, sidecar.ErrNoExecutable)
}

func TestExecLauncher_Launch_FailsIfContextCancelled(t *testing.T) {
	l := sidecar.NewExecLauncher(sidecar.Config{Command: "cat"}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Launch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecLauncher_Launch_ReportsExitWhileDescendantHoldsOutput(t *testing.T) {
	l := sidecar.NewExecLauncher(sidecar.Config{
		Command: "sh",
		Args:    []string{"-c", "echo up; sleep 2 & exit 0"},
	}, zap.NewNop())

	process, err := l.Launch(context.Background())
	require.NoError(t, err)

	// the background sleep keeps the output pipes open well past the exit
	timeout := time.After(time.Second)

	var stdout string
	for {
		select {
		case evt, ok := <-process.Events():
			require.True(t, ok, "channel closed before exit was reported")

			if evt.Kind == sidecar.EventStdout {
				stdout += string(evt.Data)
			}

			if evt.Kind != sidecar.EventTerminated {
				continue
			}

			require.NotNil(t, evt.Exit.Code)
			assert.Equal(t, 0, *evt.Exit.Code)
			assert.Equal(t, "up\n", stdout)

			// the channel closes once the descendant released the pipes
			collect(t, process)
			return
		case <-timeout:
			t.Fatal("exit not reported while output was held open")
		}
	}
}

func TestExecLauncher_Kill_TerminatesProcess(t *testing.T) {
	l := sidecar.NewExecLauncher(sidecar.Config{
		Command: "sleep",
		Args:    []string{"30"},
	}, zap.NewNop())

	process, err := l.Launch(context.Background())
	require.NoError(t, err)

	pid := process.Pid()
	require.Eventually(t, func() bool {
		return util.IsProcessAlive(pid)
	}, 2*time.Second, 10*time.Millisecond, "process never reported alive")

	require.NoError(t, process.Kill())

	events := collect(t, process)
	last := events[len(events)-1]

	assert.Equal(t, sidecar.EventTerminated, last.Kind)
	require.NotNil(t, last.Exit.Signal)
	assert.Equal(t, 9, *last.Exit.Signal)

	// killing an exited process is not an error
	assert.NoError(t, process.Kill())
}

func TestRegistry_ExecLauncher_ExitWithDescendant_ClearsHandle(t *testing.T) {
	config := sidecar.Config{
		Command: "sh",
		Args:    []string{"-c", "sleep 2 & exit 0"},
	}

	r := sidecar.NewRegistry(sidecar.Params{
		Config:   config,
		Launcher: sidecar.NewExecLauncher(config, zap.NewNop()),
		Log:      zap.NewNop(),
	})

	_, err := r.Start(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return !r.Running()
	}, time.Second, 10*time.Millisecond, "handle kept after the sidecar exited")

	res, err := r.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sidecar.Started, res.Status)

	r.Stop()
}

func TestRegistry_ExecLauncher_ExitHook(t *testing.T) {
	r := sidecar.NewRegistry(sidecar.Params{
		Config: sidecar.Config{
			Command: "sleep",
			Args:    []string{"30"},
		},
		Launcher: sidecar.NewExecLauncher(sidecar.Config{
			Command: "sleep",
			Args:    []string{"30"},
		}, zap.NewNop()),
		Log: zap.NewNop(),
	})

	res, err := r.Start(context.Background())
	require.NoError(t, err)

	assert.Equal(t, sidecar.Terminated, r.Stop())
	assert.False(t, r.Running())

	require.NoError(t, waitRelays(t, r))

	require.Eventually(t, func() bool {
		return !util.IsProcessAlive(res.Pid)
	}, 2*time.Second, 10*time.Millisecond, "process still alive after stop")
}
