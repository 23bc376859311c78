package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rotmg-stash/stash-helper/internal/commands"
	"github.com/rotmg-stash/stash-helper/internal/deviceid"
	"github.com/rotmg-stash/stash-helper/internal/httpclient"
	"github.com/rotmg-stash/stash-helper/internal/launcher"
	"github.com/rotmg-stash/stash-helper/internal/rate"
	"github.com/rotmg-stash/stash-helper/internal/realm"
	internalsecrets "github.com/rotmg-stash/stash-helper/internal/secrets"
	"github.com/rotmg-stash/stash-helper/internal/settings"
	"github.com/rotmg-stash/stash-helper/pkg/appdir"
	"github.com/rotmg-stash/stash-helper/pkg/config"
	"github.com/rotmg-stash/stash-helper/pkg/model"
	"github.com/rotmg-stash/stash-helper/pkg/secrets"
	"github.com/rotmg-stash/stash-helper/pkg/utils"
)

const (
	extractorRegex = "regex"
	extractorScan  = "scan"
)

// deps is the wired object graph shared by the subcommands.
type deps struct {
	logger  *zap.Logger
	guard   *rate.Guard
	redis   *redis.Client
	service *commands.Service
}

// buildDeps wires the realm client, settings store, launcher and device
// identity into a commands.Service.
func buildDeps(cfg *config.Config, logger *zap.Logger, extractor string) (*deps, error) {
	d := &deps{logger: logger}

	var store rate.CooldownStore
	if cfg.RedisAddr != "" {
		opts, err := redisOptions(cfg)
		if err != nil {
			return nil, err
		}
		d.redis = redis.NewClient(opts)
		store = rate.NewRedisCooldownStore(d.redis)
		logger.Info("redis.cooldown_store", zap.String("addr", utils.MaskURL(cfg.RedisAddr)))
	}
	d.guard = rate.NewGuard(logger, store, cfg.RateLimitCooldown)

	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: float64(cfg.RequestsPerSecond),
		Burst:             cfg.Burst,
	})
	httpClient := &http.Client{Timeout: cfg.RealmHTTPTimeout}
	exec := httpclient.New(logger, rateMgr, httpClient, "realm")

	client := realm.NewClient(logger, exec, cfg.RealmBaseURL, d.guard)
	if extractor == extractorScan {
		client.SetExtractor(realm.ScanExtractor{})
	}
	fetcher := realm.NewAccountFetcher(logger, client, client)
	orchestrator := launcher.NewOrchestrator(logger, client, launcher.ExecSpawner{})

	dir, err := appdir.DataDir(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	settingsStore := settings.NewStore(logger, dir)

	device := deviceid.NewProvider(logger, deviceid.DefaultSources(runtime.GOOS)...)

	d.service = commands.NewService(logger, fetcher, settingsStore, orchestrator, device)
	return d, nil
}

// redisOptions accepts REDIS_ADDR as host:port or as a redis:// URL.
// REDIS_PASS and REDIS_DB apply to the host:port form.
func redisOptions(cfg *config.Config) (*redis.Options, error) {
	if strings.Contains(cfg.RedisAddr, "://") {
		opts, err := redis.ParseURL(cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_ADDR %q: %w", utils.MaskURL(cfg.RedisAddr), err)
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	}, nil
}

// Close releases the Redis connection, if any.
func (d *deps) Close() {
	if d.redis == nil {
		return
	}
	if err := d.redis.Close(); err != nil {
		d.logger.Warn("redis.close_failed", zap.Error(err))
	}
}

// credentialFlags selects where account credentials come from.
type credentialFlags struct {
	guid     string
	password string
	secret   string
}

// resolve returns credentials from --secret (AWS Secrets Manager), then the
// --guid/--password flags, then REALM_GUID/REALM_PASSWORD.
func (f *credentialFlags) resolve(ctx context.Context, cfg *config.Config, logger *zap.Logger) (model.Credentials, error) {
	if f.secret != "" {
		resolver, err := newCredentialResolver(ctx, cfg, logger)
		if err != nil {
			return model.Credentials{}, err
		}
		return resolver.Resolve(ctx, f.secret)
	}

	creds := model.Credentials{GUID: f.guid, Secret: f.password}
	if creds.GUID == "" {
		creds.GUID = os.Getenv("REALM_GUID")
	}
	if creds.Secret == "" {
		creds.Secret = os.Getenv("REALM_PASSWORD")
	}
	if creds.GUID == "" {
		return model.Credentials{}, fmt.Errorf("account guid is required (--guid, REALM_GUID or --secret)")
	}
	return creds, nil
}

func newCredentialResolver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*internalsecrets.CredentialResolver, error) {
	provider, err := secrets.NewAWSProvider(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("aws secrets provider: %w", err)
	}
	cache := secrets.NewCache[model.Credentials](cfg.CacheTTL)
	return internalsecrets.NewCredentialResolver(logger, cfg.SecretsEnv, provider, cache), nil
}
