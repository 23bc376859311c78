package deviceid

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotmg-stash/stash-helper/pkg/model"
)

// NoHardwareMessage is printed by the helper script when it finds no serials.
const NoHardwareMessage = "No hardware info found."

// PowerShellScript computes the device token out of process. Users can run
// it themselves and paste the result; ScriptRunner runs it directly.
const PowerShellScript = `
$classes = @("Win32_BaseBoard", "Win32_BIOS", "Win32_OperatingSystem")
$serials = ""

foreach ($class in $classes) {
    try {
        foreach ($item in (Get-CimInstance -ClassName $class -ErrorAction SilentlyContinue)) {
            if ($item.SerialNumber) {
                $serials += $item.SerialNumber
            }
        }
    }
    catch {
        Write-Output "Failed to query WMI class $class"
    }
}

if ([string]::IsNullOrEmpty($serials)) {
    Write-Output "No hardware info found."
    exit 1
}

$sha1 = [System.Security.Cryptography.SHA1]::Create()
$digest = $sha1.ComputeHash([System.Text.Encoding]::UTF8.GetBytes($serials))
Write-Output (-join ($digest | ForEach-Object { $_.ToString("x2") }))
`

var digestPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// ScriptRunner obtains the device token by running PowerShellScript.
type ScriptRunner struct {
	Runner CommandRunner
}

// DeviceToken runs the script and parses its output.
func (s ScriptRunner) DeviceToken(ctx context.Context) (string, error) {
	out, err := s.Runner.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", PowerShellScript)
	return ParseScriptOutput(out, err)
}

// ParseScriptOutput interprets the helper script's stdout and exit error.
// The last non-empty line is the result; earlier lines are diagnostics.
func ParseScriptOutput(out []byte, runErr error) (string, error) {
	lines := nonEmptyLines(string(out))
	last := ""
	if len(lines) > 0 {
		last = lines[len(lines)-1]
	}

	switch {
	case last == NoHardwareMessage:
		return "", model.ErrNoHardwareIdentity
	case runErr != nil:
		return "", fmt.Errorf("device token script: %w", runErr)
	case digestPattern.MatchString(strings.ToLower(last)):
		return strings.ToLower(last), nil
	default:
		return "", fmt.Errorf("device token script: unexpected output %q", last)
	}
}
