package app

import (
	"strings"
	"testing"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptPasswords(t *testing.T) {
	p := BcryptPasswords{Cost: bcrypt.MinCost}

	hash, err := p.Hash("")
	require.NoError(t, err)
	assert.Empty(t, hash)
	assert.True(t, p.ValidateRoomPassword(&domain.Room{}, "anything"))

	hash, err = p.Hash("s3cret")
	require.NoError(t, err)
	room := &domain.Room{Password: hash}
	assert.True(t, p.ValidateRoomPassword(room, "s3cret"))
	assert.False(t, p.ValidateRoomPassword(room, "nope"))
}

func TestBcryptPasswordsLengthLimit(t *testing.T) {
	p := BcryptPasswords{Cost: bcrypt.MinCost}

	_, err := p.Hash(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)

	_, err = p.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.Equal(t, domain.CodeInvalidParameter, domain.CodeOf(err))

	// Multi-byte runes count by bytes.
	_, err = p.Hash(strings.Repeat("é", 37))
	assert.Equal(t, domain.CodeInvalidParameter, domain.CodeOf(err))
}
