package realm

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/rotmg-stash/stash-helper/internal/metrics"
	"github.com/rotmg-stash/stash-helper/pkg/model"
	"github.com/rotmg-stash/stash-helper/pkg/utils"
)

// VerifyForm builds the /account/verify form. Steam identities send
// steamid+secret; every other guid sends password. deviceToken is sent as
// given; callers choose the default.
func VerifyForm(creds model.Credentials, deviceToken string) url.Values {
	form := url.Values{}
	form.Set("clientToken", deviceToken)
	form.Set("guid", creds.GUID)
	if creds.IsSteam() {
		form.Set("steamid", creds.GUID)
		form.Set("secret", creds.Secret)
	} else {
		form.Set("password", creds.Secret)
	}
	return form
}

// ParseSessionToken extracts the session token fields from a verify response body.
func ParseSessionToken(body string, ex FieldExtractor) (model.SessionToken, error) {
	token, ok := ex.ExtractTaggedField(body, TagAccessToken)
	if !ok {
		return model.SessionToken{}, model.ErrTokenNotFound
	}
	if token == "" {
		return model.SessionToken{}, model.ErrCouldNotParseToken
	}

	issuedAt, ok := ex.ExtractTaggedField(body, TagAccessTokenTimestamp)
	if !ok || issuedAt == "" {
		return model.SessionToken{}, model.InvalidResponse(TagAccessTokenTimestamp)
	}

	expiresAt, ok := ex.ExtractTaggedField(body, TagAccessTokenExpiry)
	if !ok || expiresAt == "" {
		return model.SessionToken{}, model.InvalidResponse(TagAccessTokenExpiry)
	}

	return model.SessionToken{Token: token, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Authenticate performs the verification handshake and returns a session token.
// It issues exactly one request and never retries.
func (c *Client) Authenticate(ctx context.Context, creds model.Credentials, deviceToken string) (model.SessionToken, error) {
	if err := c.checkCooldown(ctx); err != nil {
		return model.SessionToken{}, err
	}

	form := VerifyForm(creds, deviceToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+verifyPath, strings.NewReader(form.Encode()))
	if err != nil {
		return model.SessionToken{}, model.NewError(model.KindTransport, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Info("realm.verify.sent",
		zap.String("guid", utils.MaskGUID(creds.GUID)),
		zap.Bool("steam", creds.IsSteam()))

	resp, err := c.exec.DoText(ctx, req, "verify")
	if err != nil {
		metrics.IncAuthFailure(model.KindTransport.String())
		return model.SessionToken{}, model.NewError(model.KindTransport, err)
	}

	tok, err := ParseSessionToken(resp.Body, c.extractor)
	if err == nil {
		c.logger.Debug("realm.verify.token_parsed", zap.String("expires", tok.ExpiresAt))
		return tok, nil
	}

	if errors.Is(err, model.ErrTokenNotFound) && c.observeRateLimit(ctx, resp.Body) {
		metrics.IncAuthFailure(model.KindRateLimited.String())
		return model.SessionToken{}, model.NewError(model.KindRateLimited, nil)
	}

	var tagged *model.Error
	if errors.As(err, &tagged) {
		metrics.IncAuthFailure(tagged.Kind.String())
	}
	switch {
	case errors.Is(err, model.ErrTokenNotFound):
		c.logger.Error("realm.token_not_found",
			zap.Int("status", resp.Status),
			zap.String("body", resp.Body))
	case errors.Is(err, model.ErrCouldNotParseToken):
		c.logger.Error("realm.token_unparsable",
			zap.Int("status", resp.Status),
			zap.String("body", resp.Body))
	default:
		c.logger.Warn("realm.verify.invalid_response", zap.Error(err))
	}
	return model.SessionToken{}, err
}
