package sidecar

import "os/exec"

func (p *proc) kill() error {
	return p.process.Kill()
}

func initCmd(cmd *exec.Cmd) {
	// No-op on Windows.
}
