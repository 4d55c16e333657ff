//go:build !windows

package sidecar

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func (p *proc) kill() error {
	if pgid, err := unix.Getpgid(p.pid); err == nil {
		// Negative pid sends signal to all in process group
		return unix.Kill(-pgid, unix.SIGKILL)
	}

	return unix.Kill(p.pid, unix.SIGKILL)
}

func initCmd(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
