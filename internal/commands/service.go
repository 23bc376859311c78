// Package commands implements the entry points the application shell calls:
// account dump, settings and game launch.
package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/rotmg-stash/stash-helper/internal/settings"
	"github.com/rotmg-stash/stash-helper/pkg/model"
	"github.com/rotmg-stash/stash-helper/pkg/utils"
)

// LaunchResult is returned by a successful Launch.
const LaunchResult = "Done"

// AccountDumper fetches the raw account data document.
type AccountDumper interface {
	FetchAccountDump(ctx context.Context, creds model.Credentials) (string, error)
}

// SettingsStore reads or creates the local settings file.
type SettingsStore interface {
	GetOrCreate() (model.Settings, settings.Outcome, error)
}

// GameLauncher authenticates and starts the game client.
type GameLauncher interface {
	Launch(ctx context.Context, exaltDir, deviceToken string, creds model.Credentials) error
}

// DeviceTokenSource derives this machine's device token.
type DeviceTokenSource interface {
	DeviceToken(ctx context.Context) (string, error)
}

// Service wires the commands to their backing components.
type Service struct {
	logger   *zap.Logger
	dumper   AccountDumper
	settings SettingsStore
	launcher GameLauncher
	device   DeviceTokenSource
}

// NewService creates a Service. Any dependency may be nil when the caller
// never invokes the matching command.
func NewService(logger *zap.Logger, dumper AccountDumper, store SettingsStore, launcher GameLauncher, device DeviceTokenSource) *Service {
	return &Service{
		logger:   logger,
		dumper:   dumper,
		settings: store,
		launcher: launcher,
		device:   device,
	}
}

// FetchAccountDump authenticates and returns the account data document verbatim.
func (s *Service) FetchAccountDump(ctx context.Context, guid, password string) (string, error) {
	creds := model.Credentials{GUID: guid, Secret: password}
	body, err := s.dumper.FetchAccountDump(ctx, creds)
	if err != nil {
		s.logger.Warn("commands.account_dump_failed",
			zap.String("guid", utils.MaskGUID(guid)),
			zap.Error(err))
		return "", err
	}
	return body, nil
}

// GetOrCreateSettings returns the local settings, creating them on first run.
func (s *Service) GetOrCreateSettings(_ context.Context) (model.Settings, error) {
	st, outcome, err := s.settings.GetOrCreate()
	if err != nil {
		s.logger.Error("commands.settings_failed", zap.Error(err))
		return model.Settings{}, err
	}
	s.logger.Debug("commands.settings", zap.Stringer("outcome", outcome))
	return st, nil
}

// Launch authenticates with deviceToken and starts the game client from exaltDir.
func (s *Service) Launch(ctx context.Context, exaltDir, deviceToken, guid, password string) (string, error) {
	creds := model.Credentials{GUID: guid, Secret: password}
	if err := s.launcher.Launch(ctx, exaltDir, deviceToken, creds); err != nil {
		return "", err
	}
	return LaunchResult, nil
}

// DeviceToken returns this machine's device token.
func (s *Service) DeviceToken(ctx context.Context) (string, error) {
	return s.device.DeviceToken(ctx)
}

// UserMessage renders err as the single line shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var me *model.Error
	if errors.As(err, &me) {
		switch me.Kind {
		case model.KindTokenNotFound:
			return "Access token not found. Check the account e-mail and password."
		case model.KindRateLimited:
			return "Too many requests to the game service. Try again later."
		case model.KindNoHardwareIdentity:
			return "No hardware info found."
		}
	}
	return err.Error()
}
