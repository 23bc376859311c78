package deviceid

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// DefaultWMIClasses are queried in this order.
var DefaultWMIClasses = []string{"Win32_BaseBoard", "Win32_BIOS", "Win32_OperatingSystem"}

// WMISource reads SerialNumber from WMI classes through PowerShell.
type WMISource struct {
	Runner  CommandRunner
	Classes []string
}

// NewWMISource creates a WMISource over DefaultWMIClasses.
func NewWMISource(runner CommandRunner) *WMISource {
	return &WMISource{Runner: runner, Classes: DefaultWMIClasses}
}

func (w *WMISource) Name() string { return "wmi" }

func (w *WMISource) Serials(ctx context.Context) ([]string, error) {
	var serials []string
	var errs []error
	for _, class := range w.Classes {
		query := fmt.Sprintf("Get-CimInstance -ClassName %s -ErrorAction SilentlyContinue | ForEach-Object { $_.SerialNumber }", class)
		out, err := w.Runner.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", query)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", class, err))
			continue
		}
		serials = append(serials, nonEmptyLines(string(out))...)
	}
	return serials, errors.Join(errs...)
}

// DefaultSysfsPaths mirror the baseboard, BIOS/product and OS install identities.
var DefaultSysfsPaths = []string{
	"sys/class/dmi/id/board_serial",
	"sys/class/dmi/id/product_serial",
	"etc/machine-id",
}

// SysfsSource reads serials from files below Root.
type SysfsSource struct {
	Root  string
	Paths []string
}

// NewSysfsSource creates a SysfsSource over DefaultSysfsPaths.
func NewSysfsSource(root string) *SysfsSource {
	return &SysfsSource{Root: root, Paths: DefaultSysfsPaths}
}

func (s *SysfsSource) Name() string { return "sysfs" }

func (s *SysfsSource) Serials(_ context.Context) ([]string, error) {
	var serials []string
	var errs []error
	for _, p := range s.Paths {
		b, err := os.ReadFile(filepath.Join(s.Root, p))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if v := strings.TrimSpace(string(b)); v != "" {
			serials = append(serials, v)
		}
	}
	return serials, errors.Join(errs...)
}

// StaticSource returns fixed serials.
type StaticSource []string

func (s StaticSource) Name() string { return "static" }

func (s StaticSource) Serials(context.Context) ([]string, error) { return s, nil }

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if v := strings.TrimSpace(line); v != "" {
			out = append(out, v)
		}
	}
	return out
}
