package model

// Settings is the local settings record persisted as JSON.
type Settings struct {
	SecretKey *string `json:"secret_key"`
}

// Key returns the secret key, or "" when none is set.
func (s Settings) Key() string {
	if s.SecretKey == nil {
		return ""
	}
	return *s.SecretKey
}
