//go:build windows

package launcher

import (
	"os/exec"
	"syscall"
)

const detachedProcess = 0x00000008

func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: detachedProcess | syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// release drops the process handle; Windows keeps no zombie entry.
func release(cmd *exec.Cmd) error {
	return cmd.Process.Release()
}
