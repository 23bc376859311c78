package realm

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/rotmg-stash/stash-helper/internal/metrics"
	"github.com/rotmg-stash/stash-helper/pkg/model"
	"github.com/rotmg-stash/stash-helper/pkg/utils"
)

// TokenIssuer produces session tokens.
type TokenIssuer interface {
	Authenticate(ctx context.Context, creds model.Credentials, deviceToken string) (model.SessionToken, error)
}

// AccountFetcher retrieves an account's char list ("mule dump").
type AccountFetcher struct {
	logger *zap.Logger
	issuer TokenIssuer
	client *Client
}

// NewAccountFetcher creates an AccountFetcher. issuer is usually client itself.
func NewAccountFetcher(logger *zap.Logger, client *Client, issuer TokenIssuer) *AccountFetcher {
	return &AccountFetcher{logger: logger, issuer: issuer, client: client}
}

// CharListURL builds the char list URL for an access token.
func CharListURL(baseURL, accessToken string) string {
	q := url.Values{}
	q.Set("accessToken", accessToken)
	return baseURL + charListPath + "?muleDump=true&" + q.Encode()
}

// FetchAccountDump authenticates with the default device token and returns
// the char list body verbatim.
func (f *AccountFetcher) FetchAccountDump(ctx context.Context, creds model.Credentials) (string, error) {
	start := time.Now()

	tok, err := f.issuer.Authenticate(ctx, creds, model.DefaultDeviceToken)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, CharListURL(f.client.baseURL, tok.Token), nil)
	if err != nil {
		return "", model.NewError(model.KindTransport, err)
	}

	f.logger.Info("realm.charlist.sent", zap.String("guid", utils.MaskGUID(creds.GUID)))

	resp, err := f.client.exec.DoText(ctx, req, "charlist")
	if err != nil {
		return "", model.NewError(model.KindTransport, err)
	}

	if f.client.observeRateLimit(ctx, resp.Body) {
		f.logger.Warn("realm.charlist.rate_limited", zap.String("guid", utils.MaskGUID(creds.GUID)))
	}

	elapsed := time.Since(start)
	metrics.AccountDumpDuration.Observe(elapsed.Seconds())
	f.logger.Info("realm.account_dump.completed",
		zap.String("guid", utils.MaskGUID(creds.GUID)),
		zap.Float64("elapsed_ms", float64(elapsed.Microseconds())/1000),
		zap.Int("bytes", len(resp.Body)))

	return resp.Body, nil
}
