package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderInputVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want OrderInput
	}{
		{"plain player id", "1234567", OrderInput{PlayerID: "1234567"}},
		{"player id with zone", "1234567|zone:2050", OrderInput{PlayerID: "1234567", Zone: "2050"}},
		{"player id with zone and server", "1234567|zone:2050|server:eu", OrderInput{PlayerID: "1234567", Zone: "2050", Server: "eu"}},
		{"email", "gamer@example.com", OrderInput{Email: "gamer@example.com"}},
		{"email with server", "gamer@example.com|server:asia", OrderInput{Email: "gamer@example.com", Server: "asia"}},
		{"credentials", "gamer42:hunter2", OrderInput{Username: "gamer42", Password: "hunter2"}},
		{"surrounding whitespace", "  1234567  ", OrderInput{PlayerID: "1234567"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseOrderInput(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseOrderInputEmpty(t *testing.T) {
	_, err := ParseOrderInput("")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = ParseOrderInput("   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEncodeRoundTrips(t *testing.T) {
	inputs := []OrderInput{
		{PlayerID: "1234567"},
		{PlayerID: "1234567", Zone: "2050"},
		{PlayerID: "1234567", Zone: "2050", Server: "eu"},
		{Email: "gamer@example.com"},
		{Username: "gamer42", Password: "hunter2", Server: "na"},
	}

	for _, in := range inputs {
		decoded, err := ParseOrderInput(in.Encode())
		require.NoError(t, err)
		assert.Equal(t, in, decoded)
	}
}

func TestValidatePerInputType(t *testing.T) {
	playerInput := OrderInput{PlayerID: "1234567"}
	emailInput := OrderInput{Email: "gamer@example.com"}
	credsInput := OrderInput{Username: "gamer42", Password: "hunter2"}

	assert.NoError(t, playerInput.Validate("player_id"))
	assert.Error(t, playerInput.Validate("email"))
	assert.Error(t, playerInput.Validate("credentials"))

	assert.NoError(t, emailInput.Validate("email"))
	assert.Error(t, emailInput.Validate("player_id"))
	assert.Error(t, OrderInput{Email: "not-an-email"}.Validate("email"))

	assert.NoError(t, credsInput.Validate("credentials"))
	assert.Error(t, OrderInput{Username: "gamer42"}.Validate("credentials"))

	// Unconfigured group types fall back to requiring a player id
	assert.NoError(t, playerInput.Validate(""))
	assert.Error(t, emailInput.Validate(""))
}
