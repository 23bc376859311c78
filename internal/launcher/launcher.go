package launcher

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/rotmg-stash/stash-helper/internal/metrics"
	"github.com/rotmg-stash/stash-helper/pkg/model"
	"github.com/rotmg-stash/stash-helper/pkg/utils"
)

// ExecutableName is the game client binary inside the install directory.
const ExecutableName = "RotMG Exalt.exe"

// TokenIssuer produces session tokens.
type TokenIssuer interface {
	Authenticate(ctx context.Context, creds model.Credentials, deviceToken string) (model.SessionToken, error)
}

// ProcessSpec describes a process to start.
type ProcessSpec struct {
	Path string
	Args []string
}

// LaunchFields are the values carried by the launch argument.
type LaunchFields struct {
	GUID            string
	Token           string
	TokenTimestamp  string
	TokenExpiration string
}

// LaunchArgument renders the single data:{...} argument the game client expects.
func LaunchArgument(guid string, tok model.SessionToken) string {
	enc := base64.StdEncoding.EncodeToString
	return fmt.Sprintf("data:{platform:Deca,guid:%s,token:%s,tokenTimestamp:%s,tokenExpiration:%s,env:4}",
		enc([]byte(guid)),
		enc([]byte(tok.Token)),
		enc([]byte(tok.IssuedAt)),
		enc([]byte(tok.ExpiresAt)))
}

// DecodeLaunchArgument parses a data:{...} argument back into its decoded fields.
func DecodeLaunchArgument(arg string) (LaunchFields, error) {
	inner, ok := strings.CutPrefix(arg, "data:{")
	if !ok {
		return LaunchFields{}, fmt.Errorf("launch argument: missing data:{ prefix")
	}
	inner, ok = strings.CutSuffix(inner, "}")
	if !ok {
		return LaunchFields{}, fmt.Errorf("launch argument: missing closing brace")
	}

	values := make(map[string]string)
	for _, pair := range strings.Split(inner, ",") {
		k, v, found := strings.Cut(pair, ":")
		if !found {
			return LaunchFields{}, fmt.Errorf("launch argument: malformed pair %q", pair)
		}
		values[k] = v
	}

	var out LaunchFields
	targets := map[string]*string{
		"guid":            &out.GUID,
		"token":           &out.Token,
		"tokenTimestamp":  &out.TokenTimestamp,
		"tokenExpiration": &out.TokenExpiration,
	}
	for key, dst := range targets {
		raw, ok := values[key]
		if !ok {
			return LaunchFields{}, fmt.Errorf("launch argument: missing %s", key)
		}
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return LaunchFields{}, fmt.Errorf("launch argument: decode %s: %w", key, err)
		}
		*dst = string(b)
	}
	return out, nil
}

// BuildInvocation builds the process spec for a session token.
func BuildInvocation(exaltDir string, creds model.Credentials, tok model.SessionToken) ProcessSpec {
	return ProcessSpec{
		Path: filepath.Join(exaltDir, ExecutableName),
		Args: []string{LaunchArgument(creds.GUID, tok)},
	}
}

// Orchestrator authenticates and starts the game client.
type Orchestrator struct {
	logger  *zap.Logger
	issuer  TokenIssuer
	spawner Spawner
}

// NewOrchestrator creates an Orchestrator. A nil spawner uses ExecSpawner.
func NewOrchestrator(logger *zap.Logger, issuer TokenIssuer, spawner Spawner) *Orchestrator {
	if spawner == nil {
		spawner = ExecSpawner{}
	}
	return &Orchestrator{logger: logger, issuer: issuer, spawner: spawner}
}

// BuildLaunchInvocation authenticates with deviceToken and returns the process spec.
func (o *Orchestrator) BuildLaunchInvocation(ctx context.Context, exaltDir, deviceToken string, creds model.Credentials) (ProcessSpec, error) {
	tok, err := o.issuer.Authenticate(ctx, creds, deviceToken)
	if err != nil {
		return ProcessSpec{}, err
	}
	return BuildInvocation(exaltDir, creds, tok), nil
}

// Launch authenticates and starts the game client detached. It returns as
// soon as the process is spawned and keeps no handle to it.
func (o *Orchestrator) Launch(ctx context.Context, exaltDir, deviceToken string, creds model.Credentials) error {
	spec, err := o.BuildLaunchInvocation(ctx, exaltDir, deviceToken, creds)
	if err != nil {
		metrics.IncLaunch("auth_failed")
		return err
	}

	o.logger.Info("launcher.starting",
		zap.String("path", spec.Path),
		zap.String("guid", utils.MaskGUID(creds.GUID)))

	if err := o.spawner.Spawn(spec); err != nil {
		metrics.IncLaunch("spawn_failed")
		o.logger.Error("launcher.spawn_failed", zap.String("path", spec.Path), zap.Error(err))
		return model.NewError(model.KindProcessSpawn, err)
	}

	metrics.IncLaunch("spawned")
	o.logger.Info("launcher.spawned", zap.String("path", spec.Path))
	return nil
}
