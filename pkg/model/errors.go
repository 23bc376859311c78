package model

import "fmt"

// ErrorKind classifies failures of the authentication, launch and settings flows.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNoHardwareIdentity
	KindTransport
	KindTokenNotFound
	KindCouldNotParseToken
	KindInvalidResponse
	KindProcessSpawn
	KindSettingsIO
	KindSettingsParse
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoHardwareIdentity:
		return "NoHardwareIdentity"
	case KindTransport:
		return "TransportError"
	case KindTokenNotFound:
		return "TokenNotFound"
	case KindCouldNotParseToken:
		return "CouldNotParseToken"
	case KindInvalidResponse:
		return "InvalidResponse"
	case KindProcessSpawn:
		return "ProcessSpawnError"
	case KindSettingsIO:
		return "SettingsIOError"
	case KindSettingsParse:
		return "SettingsParseError"
	case KindRateLimited:
		return "RateLimited"
	default:
		return "Unknown"
	}
}

// Error is a tagged error. Field names the missing response field for
// KindInvalidResponse; Err carries the underlying cause, if any.
type Error struct {
	Kind  ErrorKind
	Field string
	Err   error
}

// Sentinels for errors.Is. An *Error matches a sentinel of the same Kind;
// a sentinel with a Field additionally requires the same Field.
var (
	ErrNoHardwareIdentity = &Error{Kind: KindNoHardwareIdentity}
	ErrTransport          = &Error{Kind: KindTransport}
	ErrTokenNotFound      = &Error{Kind: KindTokenNotFound}
	ErrCouldNotParseToken = &Error{Kind: KindCouldNotParseToken}
	ErrInvalidResponse    = &Error{Kind: KindInvalidResponse}
	ErrProcessSpawn       = &Error{Kind: KindProcessSpawn}
	ErrSettingsIO         = &Error{Kind: KindSettingsIO}
	ErrSettingsParse      = &Error{Kind: KindSettingsParse}
	ErrRateLimited        = &Error{Kind: KindRateLimited}
)

// NewError builds a tagged error wrapping err.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// InvalidResponse builds a KindInvalidResponse error naming the missing field.
func InvalidResponse(field string) *Error {
	return &Error{Kind: KindInvalidResponse, Field: field}
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindNoHardwareIdentity:
		msg = "no hardware info found"
	case KindTransport:
		msg = "request to game service failed"
	case KindTokenNotFound:
		msg = "access token not found in response"
	case KindCouldNotParseToken:
		msg = "could not parse access token"
	case KindInvalidResponse:
		msg = "invalid response"
		if e.Field != "" {
			msg = fmt.Sprintf("invalid response: %s not found", e.Field)
		}
	case KindProcessSpawn:
		msg = "could not start game client"
	case KindSettingsIO:
		msg = "settings file unavailable"
	case KindSettingsParse:
		msg = "settings file malformed"
	case KindRateLimited:
		msg = "rate limited by game service"
	default:
		msg = "unknown error"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by Kind (and Field, when the target names one).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}
