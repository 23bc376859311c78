package launcher

import (
	"os/exec"
)

// Spawner starts a process described by a ProcessSpec.
type Spawner interface {
	Spawn(spec ProcessSpec) error
}

// ExecSpawner starts processes with os/exec and detaches from them. No
// handle is kept for the caller; see release for how each platform lets go.
type ExecSpawner struct{}

func (ExecSpawner) Spawn(spec ProcessSpec) error {
	cmd := exec.Command(spec.Path, spec.Args...)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	return release(cmd)
}
