// Package deviceid derives a stable per-machine device token from hardware
// serial numbers. The token scopes game sessions to a machine.
package deviceid

import (
	"context"
	"crypto/sha1" //nolint:gosec // the game service expects a SHA-1 device token
	"encoding/hex"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/rotmg-stash/stash-helper/pkg/model"
)

// Derive concatenates the non-empty serials in order, with no separator, and
// returns the lowercase hex SHA-1 of the UTF-8 bytes.
func Derive(serials []string) (string, error) {
	var b strings.Builder
	for _, s := range serials {
		b.WriteString(s)
	}
	if b.Len() == 0 {
		return "", model.ErrNoHardwareIdentity
	}
	sum := sha1.Sum([]byte(b.String())) //nolint:gosec
	return hex.EncodeToString(sum[:]), nil
}

// SerialSource reports hardware serial numbers from one inventory.
// Sources are best-effort: they return whatever they could read together
// with any errors met along the way.
type SerialSource interface {
	Name() string
	Serials(ctx context.Context) ([]string, error)
}

// Provider computes the device token from a list of sources.
type Provider struct {
	logger  *zap.Logger
	sources []SerialSource
}

// NewProvider creates a Provider. With no sources it uses DefaultSources.
func NewProvider(logger *zap.Logger, sources ...SerialSource) *Provider {
	if len(sources) == 0 {
		sources = DefaultSources(runtime.GOOS)
	}
	return &Provider{logger: logger, sources: sources}
}

// DefaultSources returns the inventory sources for an operating system.
func DefaultSources(goos string) []SerialSource {
	if goos == "windows" {
		return []SerialSource{NewWMISource(ExecRunner{})}
	}
	return []SerialSource{NewSysfsSource("/")}
}

// DeviceToken collects serials from every source and derives the token.
// Failing sources are skipped; no serials at all yields NoHardwareIdentity.
func (p *Provider) DeviceToken(ctx context.Context) (string, error) {
	var serials []string
	for _, src := range p.sources {
		got, err := src.Serials(ctx)
		if err != nil {
			p.logger.Debug("deviceid.source_partial",
				zap.String("source", src.Name()),
				zap.Error(err))
		}
		serials = append(serials, got...)
	}

	token, err := Derive(serials)
	if err != nil {
		p.logger.Warn("deviceid.no_hardware_info", zap.Int("sources", len(p.sources)))
		return "", err
	}
	return token, nil
}
