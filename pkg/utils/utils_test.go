package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher()

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"))

	ok, err := h.Verify("secret1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasherSaltsEachHash(t *testing.T) {
	h := NewBcryptHasher()
	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestBcryptHasherRejectsEmptyPassword(t *testing.T) {
	_, err := NewBcryptHasher().Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestBcryptHasherMalformedHash(t *testing.T) {
	ok, err := NewBcryptHasher().Verify("secret1", "not-a-hash")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"simple", "a@x.com", true},
		{"surrounding whitespace", "  a@x.com  ", true},
		{"subdomain", "first.last@mail.example.org", true},
		{"ip literal", "user@[192.168.0.1]", true},
		{"missing at", "ax.com", false},
		{"missing tld", "a@x", false},
		{"empty", "   ", false},
		{"double dot", "a..b@x.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "email", ve.Field)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret1"))
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword("12345"))

	assert.NoError(t, ValidatePassword(strings.Repeat("a", MaxPasswordBytes)))
	err := ValidatePassword(strings.Repeat("a", MaxPasswordBytes+1))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Password must not exceed 72 bytes", ve.Message)

	// 25 three-byte runes: long enough in characters, too long in bytes.
	assert.Error(t, ValidatePassword(strings.Repeat("€", 25)))
}

func TestValidateBio(t *testing.T) {
	assert.NoError(t, ValidateBio(strings.Repeat("a", MaxBioLength)))
	assert.Error(t, ValidateBio(strings.Repeat("a", MaxBioLength+1)))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "0 Bytes", FormatFileSize(0, 2))
	assert.Equal(t, "512 Bytes", FormatFileSize(512, 2))
	assert.Equal(t, "1.54 KB", FormatFileSize(1536, 2))
	assert.Equal(t, "2.5 MB", FormatFileSize(2500000, 2))
}
