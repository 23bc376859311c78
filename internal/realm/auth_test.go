package realm

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rotmg-stash/stash-helper/pkg/model"
)

// mockTransport is an http.RoundTripper that delegates to a handler function.
type mockTransport struct {
	fn func(*http.Request) (*http.Response, error)
}

func (m *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.fn(req)
}

// ─── VerifyForm ───────────────────────────────────────────────────────────────

func TestVerifyForm_DirectLogin(t *testing.T) {
	form := VerifyForm(model.Credentials{GUID: "player@mail.com", Secret: "pw"}, model.DefaultDeviceToken)

	assert.Equal(t, "0", form.Get("clientToken"))
	assert.Equal(t, "player@mail.com", form.Get("guid"))
	assert.Equal(t, "pw", form.Get("password"))
	assert.NotContains(t, form, "steamid")
	assert.NotContains(t, form, "secret")
}

func TestVerifyForm_DeviceTokenSentAsGiven(t *testing.T) {
	form := VerifyForm(model.Credentials{GUID: "player@mail.com", Secret: "pw"}, "")

	assert.Contains(t, form, "clientToken")
	assert.Equal(t, "", form.Get("clientToken"))
}

func TestVerifyForm_SteamLogin(t *testing.T) {
	form := VerifyForm(model.Credentials{GUID: "steamworks:7656119", Secret: "steam-secret"}, "dev123")

	assert.Equal(t, "dev123", form.Get("clientToken"))
	assert.Equal(t, "steamworks:7656119", form.Get("guid"))
	assert.Equal(t, "steamworks:7656119", form.Get("steamid"))
	assert.Equal(t, "steam-secret", form.Get("secret"))
	assert.NotContains(t, form, "password")
}

// ─── ParseSessionToken ────────────────────────────────────────────────────────

func TestParseSessionToken(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    model.SessionToken
		wantErr error
	}{
		{
			name: "well formed",
			body: validVerifyBody,
			want: model.SessionToken{Token: "abc", IssuedAt: "t1", ExpiresAt: "e1"},
		},
		{
			name: "extraneous markup",
			body: "<Account><Name>x</Name>\n<AccessToken>X</AccessToken>\n<AccessTokenTimestamp>Y</AccessTokenTimestamp><junk>\n<AccessTokenExpiration>Z</AccessTokenExpiration></Account>",
			want: model.SessionToken{Token: "X", IssuedAt: "Y", ExpiresAt: "Z"},
		},
		{
			name:    "no token tag",
			body:    "<Error>WebChangePasswordDialog.passwordError</Error>",
			wantErr: model.ErrTokenNotFound,
		},
		{
			name:    "empty token",
			body:    "<AccessToken></AccessToken><AccessTokenTimestamp>t</AccessTokenTimestamp><AccessTokenExpiration>e</AccessTokenExpiration>",
			wantErr: model.ErrCouldNotParseToken,
		},
		{
			name:    "missing timestamp",
			body:    "<AccessToken>abc</AccessToken><AccessTokenExpiration>e1</AccessTokenExpiration>",
			wantErr: model.InvalidResponse(TagAccessTokenTimestamp),
		},
		{
			name:    "missing expiration",
			body:    "<AccessToken>abc</AccessToken><AccessTokenTimestamp>t1</AccessTokenTimestamp>",
			wantErr: model.InvalidResponse(TagAccessTokenExpiry),
		},
		{
			name:    "empty body",
			body:    "",
			wantErr: model.ErrTokenNotFound,
		},
	}

	for exName, ex := range extractors() {
		for _, tt := range tests {
			t.Run(exName+"/"+tt.name, func(t *testing.T) {
				got, err := ParseSessionToken(tt.body, ex)
				if tt.wantErr != nil {
					require.Error(t, err)
					assert.ErrorIs(t, err, tt.wantErr)
					assert.Equal(t, model.SessionToken{}, got, "never partially populated")
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	}
}

func TestParseSessionToken_MissingTimestampNamesField(t *testing.T) {
	_, err := ParseSessionToken("<AccessToken>abc</AccessToken>", NewRegexExtractor())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessTokenTimestamp")
	assert.NotErrorIs(t, err, model.InvalidResponse(TagAccessTokenExpiry))
}

// ─── Authenticate ─────────────────────────────────────────────────────────────

func TestAuthenticate_Success(t *testing.T) {
	realm := newMockRealm(t, validVerifyBody, "")
	client, _ := newTestClient(t, realm.URL, realm.Client())

	tok, err := client.Authenticate(context.Background(), model.Credentials{GUID: "user1", Secret: "pw"}, model.DefaultDeviceToken)
	require.NoError(t, err)
	assert.Equal(t, model.SessionToken{Token: "abc", IssuedAt: "t1", ExpiresAt: "e1"}, tok)

	reqs := realm.Requests()
	require.Len(t, reqs, 1, "exactly one network request")
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/account/verify", reqs[0].Path)
	assert.Equal(t, "application/x-www-form-urlencoded", reqs[0].CType)
	assert.Equal(t, "0", reqs[0].Form.Get("clientToken"))
	assert.Equal(t, "user1", reqs[0].Form.Get("guid"))
	assert.Equal(t, "pw", reqs[0].Form.Get("password"))
}

func TestAuthenticate_SteamSendsSteamFields(t *testing.T) {
	realm := newMockRealm(t, validVerifyBody, "")
	client, _ := newTestClient(t, realm.URL, realm.Client())

	_, err := client.Authenticate(context.Background(), model.Credentials{GUID: "steamworks:42", Secret: "s3"}, "devtok")
	require.NoError(t, err)

	form := realm.Requests()[0].Form
	assert.Equal(t, "devtok", form.Get("clientToken"))
	assert.Equal(t, "steamworks:42", form.Get("steamid"))
	assert.Equal(t, "s3", form.Get("secret"))
	assert.Empty(t, form.Get("password"))
}

func TestAuthenticate_WrongCredentials(t *testing.T) {
	realm := newMockRealm(t, "<Error>WebChangePasswordDialog.passwordError</Error>", "")
	client, _ := newTestClient(t, realm.URL, realm.Client())

	_, err := client.Authenticate(context.Background(), model.Credentials{GUID: "user1", Secret: "bad"}, "")
	assert.ErrorIs(t, err, model.ErrTokenNotFound)
	assert.NotContains(t, err.Error(), "passwordError", "body stays out of the returned message")
}

func TestAuthenticate_TransportError(t *testing.T) {
	client, _ := newTestClient(t, "http://realm.test", &http.Client{Transport: &mockTransport{
		fn: func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial tcp: no such host")
		},
	}})

	_, err := client.Authenticate(context.Background(), model.Credentials{GUID: "user1", Secret: "pw"}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTransport)
	assert.Contains(t, err.Error(), "no such host")
}

func TestAuthenticate_RateLimitTripsCooldown(t *testing.T) {
	realm := newMockRealm(t, "<Error>Try again later</Error>", "")
	client, _ := newTestClient(t, realm.URL, realm.Client())
	creds := model.Credentials{GUID: "user1", Secret: "pw"}

	_, err := client.Authenticate(context.Background(), creds, "")
	assert.ErrorIs(t, err, model.ErrRateLimited)

	realm.SetVerifyBody(validVerifyBody)
	_, err = client.Authenticate(context.Background(), creds, "")
	assert.ErrorIs(t, err, model.ErrRateLimited, "cooldown refuses without a request")
	assert.Len(t, realm.Requests(), 1)
}

func TestAuthenticate_ScanExtractor(t *testing.T) {
	realm := newMockRealm(t, "<Response>"+validVerifyBody+"</Response>", "")
	client, _ := newTestClient(t, realm.URL, realm.Client())
	client.SetExtractor(ScanExtractor{})

	tok, err := client.Authenticate(context.Background(), model.Credentials{GUID: "user1", Secret: "pw"}, "")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.Token)
}

func TestAuthenticate_LogsBodyOnTokenFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		event   string
		wantErr error
	}{
		{
			name:    "token missing",
			body:    "<Error>WebChangePasswordDialog.passwordError</Error>",
			event:   "realm.token_not_found",
			wantErr: model.ErrTokenNotFound,
		},
		{
			name:    "token empty",
			body:    "<AccessToken></AccessToken><AccessTokenTimestamp>t1</AccessTokenTimestamp><AccessTokenExpiration>e1</AccessTokenExpiration>",
			event:   "realm.token_unparsable",
			wantErr: model.ErrCouldNotParseToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			realm := newMockRealm(t, tt.body, "")
			core, logs := observer.New(zap.ErrorLevel)
			client, _ := newTestClientWithLogger(t, zap.New(core), realm.URL, realm.Client())

			_, err := client.Authenticate(context.Background(), model.Credentials{GUID: "user1", Secret: "pw"}, model.DefaultDeviceToken)
			require.ErrorIs(t, err, tt.wantErr)
			assert.NotContains(t, err.Error(), tt.body)

			entries := logs.FilterMessage(tt.event).All()
			require.Len(t, entries, 1)
			assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
			assert.Equal(t, tt.body, entries[0].ContextMap()["body"])
		})
	}
}

func TestAuthenticate_InvalidResponseLogsNoBody(t *testing.T) {
	body := "<AccessToken>abc</AccessToken><AccessTokenExpiration>e1</AccessTokenExpiration>"
	realm := newMockRealm(t, body, "")
	core, logs := observer.New(zap.DebugLevel)
	client, _ := newTestClientWithLogger(t, zap.New(core), realm.URL, realm.Client())

	_, err := client.Authenticate(context.Background(), model.Credentials{GUID: "user1", Secret: "pw"}, model.DefaultDeviceToken)
	require.ErrorIs(t, err, model.ErrInvalidResponse)

	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	for _, e := range logs.All() {
		assert.NotContains(t, e.ContextMap(), "body", "entry %q", e.Message)
	}
}
