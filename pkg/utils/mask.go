package utils

import (
	"regexp"
	"strings"

	"github.com/rotmg-stash/stash-helper/pkg/model"
)

var urlPasswordRegex = regexp.MustCompile(`(:)([^:@/]+)(@)`)

// MaskURL hides the password part of a URL or DSN (e.g. a Redis address).
func MaskURL(raw string) string {
	return urlPasswordRegex.ReplaceAllString(raw, ":***@")
}

// MaskGUID hides an account identifier for logging.
// Steam identities keep their prefix, e-mail addresses keep only the "@",
// anything else keeps its first character.
func MaskGUID(guid string) string {
	switch {
	case guid == "":
		return ""
	case strings.HasPrefix(guid, model.SteamPrefix):
		return model.SteamPrefix + strings.Repeat("*", len(guid)-len(model.SteamPrefix))
	case strings.Contains(guid, "@"):
		user, domain, _ := strings.Cut(guid, "@")
		return strings.Repeat("*", len(user)) + "@" + strings.Repeat("*", len(domain))
	}
	runes := []rune(guid)
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}
