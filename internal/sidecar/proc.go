package sidecar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type proc struct {
	pid     int
	process *os.Process
	stdin   io.WriteCloser
	events  chan Event
	done    chan struct{}

	log *zap.Logger
}

var _ Process = (*proc)(nil)

// drainTimeout bounds how long the exit of the process is held back
// for output still buffered in the pipes.
const drainTimeout = 250 * time.Millisecond

func startProc(path string, config Config, log *zap.Logger) (*proc, error) {
	cmd := exec.Command(path, config.Args...)

	cmd.Env = mergeEnv(os.Environ(), config.Env)

	if config.Cwd != "" {
		cmd.Dir = config.Cwd
	}

	// stdin stays open for the lifetime of the process, as sidecars
	// commonly exit once their parent closes the pipe
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}

	// the output pipes are owned here rather than by cmd, so that Wait
	// returns on exit even if descendants of the sidecar hold them open
	stdout, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	stderr, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdout, stdoutW)
		return nil, err
	}

	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	initCmd(cmd)

	err = cmd.Start()

	// the child holds its own copies of the write ends
	closeAll(stdoutW, stderrW)

	if err != nil {
		closeAll(stdout, stderr)
		return nil, err
	}

	chunkSize := config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	p := &proc{
		pid:     cmd.Process.Pid,
		process: cmd.Process,
		stdin:   stdin,
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
		log:     log.Named("proc").With(zap.Int("pid", cmd.Process.Pid)),
	}

	go p.pump(cmd, stdout, stderr, chunkSize)

	return p, nil
}

func (p *proc) Pid() int {
	return p.pid
}

func (p *proc) Events() <-chan Event {
	return p.events
}

// Kill sends SIGKILL to the process group of the sidecar. Killing a
// process that already exited is not an error.
func (p *proc) Kill() error {
	select {
	case <-p.done:
		p.log.Debug("process already terminated")
		return nil
	default:
		// continue
	}

	// close stdin before killing the process, to
	// avoid the process hanging on input
	if err := p.stdin.Close(); err != nil {
		p.log.Debug("close stdin failed", zap.Error(err))
	}

	p.log.Info("killing process")

	return p.kill()
}

// pump reads both output streams until they are closed, and reports the
// exit status of the process once it exited. Output buffered at exit is
// delivered first, unless the streams stay open past drainTimeout.
func (p *proc) pump(cmd *exec.Cmd, stdout, stderr *os.File, chunkSize int) {
	var wg sync.WaitGroup

	wg.Add(2)
	go p.read(&wg, EventStdout, stdout, chunkSize)
	go p.read(&wg, EventStderr, stderr, chunkSize)

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()

	err := cmd.Wait()
	close(p.done)

	timer := time.NewTimer(drainTimeout)
	select {
	case <-drained:
		timer.Stop()
	case <-timer.C:
		p.log.Debug("output streams still open after exit")
	}

	p.events <- Event{
		Kind: EventTerminated,
		Exit: exitStatus(err),
	}

	<-drained
	close(p.events)
}

func (p *proc) read(wg *sync.WaitGroup, kind EventKind, r io.ReadCloser, chunkSize int) {
	defer wg.Done()
	defer r.Close()

	buf := make([]byte, chunkSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			p.events <- Event{Kind: kind, Data: chunk}
		}

		if err == nil {
			continue
		}

		if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
			p.events <- Event{
				Kind: EventError,
				Err:  fmt.Errorf("read %s: %w", kind, err),
			}
		}

		return
	}
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

func mergeEnv(base []string, env map[string]string) []string {
	merged := make([]string, 0, len(base)+len(env))
	merged = append(merged, base...)

	for k, v := range env {
		merged = append(merged, fmt.Sprintf("%s=%s", k, v))
	}

	return merged
}

func exitStatus(err error) ExitStatus {
	var cell int
	var code *int
	var signo *int

	if err == nil {
		// the process exited successfully, set the exit code to 0
		code = &cell
	} else if exitError, ok := err.(*exec.ExitError); ok {
		if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				cell = int(status.Signal())
				signo = &cell
			} else {
				cell = status.ExitStatus()
				code = &cell
			}
		}
	}

	if signo == nil && code == nil {
		// could not determine the exit status or signal,
		// set exit status to 1
		cell = 1
		code = &cell
	}

	return ExitStatus{
		Code:   code,
		Signal: signo,
	}
}
