package secrets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rotmg-stash/stash-helper/pkg/model"
	pkgsecrets "github.com/rotmg-stash/stash-helper/pkg/secrets"
	"github.com/rotmg-stash/stash-helper/pkg/utils"
)

// segment is the middle path component shared by all account secrets.
const segment = "rotmg"

// CredentialResolver resolves account credentials from a secrets provider,
// caching results locally to reduce API calls.
//
// Secret naming convention: {env}/rotmg/{account}
type CredentialResolver struct {
	logger   *zap.Logger
	env      string
	provider pkgsecrets.Provider
	cache    *pkgsecrets.Cache[model.Credentials]
}

// NewCredentialResolver constructs a resolver for the given environment.
func NewCredentialResolver(
	logger *zap.Logger,
	env string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[model.Credentials],
) *CredentialResolver {
	return &CredentialResolver{
		logger:   logger,
		env:      env,
		provider: provider,
		cache:    cache,
	}
}

// SecretName builds the secret key for an account.
// Pattern: {env}/rotmg/{account}
func (r *CredentialResolver) SecretName(account string) string {
	return strings.ToLower(fmt.Sprintf("%s/%s/%s", r.env, segment, account))
}

// Resolve fetches or returns cached credentials for account.
func (r *CredentialResolver) Resolve(ctx context.Context, account string) (model.Credentials, error) {
	name := r.SecretName(account)

	if creds, ok := r.cache.Get(name); ok {
		return creds, nil
	}

	secretMap, err := r.provider.GetSecret(ctx, name)
	if err != nil {
		r.logger.Warn("aws.secret_fetch_failed",
			zap.String("key", name),
			zap.Error(err))
		return model.Credentials{}, fmt.Errorf("resolve credentials for %q: %w", account, err)
	}

	creds, err := parseCredentials(secretMap)
	if err != nil {
		return model.Credentials{}, fmt.Errorf("parse secret %q: %w", name, err)
	}

	r.cache.Put(name, creds)

	r.logger.Info("aws.credentials_resolved",
		zap.String("account", account),
		zap.String("guid", utils.MaskGUID(creds.GUID)),
	)
	return creds, nil
}

// DiscoverAccounts lists the account names that have a secret under
// "{env}/rotmg/".
func (r *CredentialResolver) DiscoverAccounts(ctx context.Context) ([]string, error) {
	prefix := strings.ToLower(fmt.Sprintf("%s/%s/", r.env, segment))

	names, err := r.provider.ListSecrets(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("discover accounts: %w", err)
	}

	var accounts []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		account := strings.TrimPrefix(lower, prefix)
		if account != "" && !strings.Contains(account, "/") {
			accounts = append(accounts, account)
		}
	}

	r.logger.Info("aws.accounts_discovered",
		zap.Int("count", len(accounts)),
		zap.Strings("accounts", accounts),
	)
	return accounts, nil
}

// parseCredentials reads the guid and password fields of a secret.
func parseCredentials(m map[string]string) (model.Credentials, error) {
	guid := m["guid"]
	if guid == "" {
		return model.Credentials{}, fmt.Errorf("missing guid")
	}
	password, ok := m["password"]
	if !ok {
		return model.Credentials{}, fmt.Errorf("missing password")
	}
	return model.Credentials{GUID: guid, Secret: password}, nil
}
