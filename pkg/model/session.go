package model

import "strings"

// SteamPrefix marks a guid as a Steam platform identity.
const SteamPrefix = "steamworks:"

// DefaultDeviceToken means "no device identity supplied".
const DefaultDeviceToken = "0"

// Credentials identify a game account. They are supplied per call and never persisted;
// the credential resolver may hold them in memory for CACHE_TTL.
type Credentials struct {
	GUID   string `json:"guid"`
	Secret string `json:"password"` // password, or the Steam secret for steamworks: guids
}

// IsSteam reports whether the guid is a Steam platform identity.
func (c Credentials) IsSteam() bool {
	return strings.HasPrefix(c.GUID, SteamPrefix)
}

// SessionToken is the result of a successful verification handshake.
// All three fields are non-empty; timestamps are opaque server strings.
type SessionToken struct {
	Token     string
	IssuedAt  string
	ExpiresAt string
}
