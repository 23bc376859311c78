//go:build !windows

package launcher

import (
	"os/exec"
	"syscall"
)

func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// release reaps the child in the background so a long-running parent
// (the bridge) does not accumulate zombies. The exit status is discarded.
func release(cmd *exec.Cmd) error {
	go func() { _ = cmd.Wait() }()
	return nil
}
