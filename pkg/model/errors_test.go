package model

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("authenticate: %w", NewError(KindTransport, io.ErrUnexpectedEOF))

	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, err, ErrTokenNotFound)
}

func TestError_InvalidResponseField(t *testing.T) {
	err := InvalidResponse("AccessTokenTimestamp")

	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.ErrorIs(t, err, InvalidResponse("AccessTokenTimestamp"))
	assert.NotErrorIs(t, err, InvalidResponse("AccessTokenExpiration"))
	assert.Equal(t, "invalid response: AccessTokenTimestamp not found", err.Error())
}

func TestError_AsExposesKind(t *testing.T) {
	var tagged *Error
	err := fmt.Errorf("launch: %w", NewError(KindProcessSpawn, errors.New("file not found")))

	assert.True(t, errors.As(err, &tagged))
	assert.Equal(t, KindProcessSpawn, tagged.Kind)
	assert.Equal(t, "ProcessSpawnError", tagged.Kind.String())
	assert.Contains(t, err.Error(), "file not found")
}

func TestCredentials_IsSteam(t *testing.T) {
	assert.True(t, Credentials{GUID: "steamworks:123"}.IsSteam())
	assert.False(t, Credentials{GUID: "user@mail.com"}.IsSteam())
	assert.False(t, Credentials{GUID: "Steamworks:123"}.IsSteam())
}
