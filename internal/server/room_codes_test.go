package server_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"takesix-server/internal/server"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ23456789"

func TestGenerateRoomCodeFormat(t *testing.T) {
	assert := assert.New(t)
	usedCodes := make(map[string]bool)

	for range 100 {
		code := server.GenerateRoomCode(usedCodes)

		assert.Equal(6, len(code))

		for _, ch := range code {
			assert.True(strings.ContainsRune(codeAlphabet, ch), "Code %s contains %c", code, ch)
		}
	}
}

func TestGenerateRoomCodeUniqueness(t *testing.T) {
	usedCodes := make(map[string]bool)
	generatedCodes := make(map[string]bool)

	for range 1000 {
		code := server.GenerateRoomCode(usedCodes)

		assert.False(t, generatedCodes[code], "Code %s was generated twice", code)

		generatedCodes[code] = true
		usedCodes[code] = true
	}

	assert.Equal(t, 1000, len(generatedCodes))
}

func TestGenerateRoomCodeAvoidsUsedCodes(t *testing.T) {
	usedCodes := make(map[string]bool)

	usedCodes["AAAAAA"] = true
	usedCodes["ZZZZZZ"] = true
	usedCodes["TESTED"] = true

	for range 100 {
		code := server.GenerateRoomCode(usedCodes)

		assert.NotEqual(t, "AAAAAA", code)
		assert.NotEqual(t, "ZZZZZZ", code)
		assert.NotEqual(t, "TESTED", code)
	}
}

func TestValidateRoomCodeValidCodes(t *testing.T) {
	validCodes := []string{"BEARSX", "GAMERS", "AAAAAA", "ZZZZZZ", "AB23XY"}

	for _, code := range validCodes {
		err := server.ValidateRoomCode(code)
		assert.NoError(t, err, "Code %s should be valid", code)
	}
}

func TestValidateRoomCodeInvalidLength(t *testing.T) {
	invalidCodes := []string{"", "A", "ABC", "ABCDE", "ABCDEFG"}

	for _, code := range invalidCodes {
		err := server.ValidateRoomCode(code)
		assert.Error(t, err, "Code %s should be invalid (wrong length)", code)
		assert.Contains(t, err.Error(), "exactly 6 characters")
	}
}

func TestValidateRoomCodeInvalidCharacters(t *testing.T) {
	invalidCodes := []string{
		"ABC0EF", // zero is not in the alphabet
		"ABC1EF", // neither is one
		"A-B!CD", // special chars
		"AB CDE", // space
	}

	for _, code := range invalidCodes {
		err := server.ValidateRoomCode(code)
		assert.Error(t, err, "Code %s should be invalid (bad characters)", code)
		assert.Contains(t, err.Error(), "invalid characters")
	}
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "ABCDEF", server.NormalizeRoomCode("abcdef"))
	assert.Equal(t, "ABCDEF", server.NormalizeRoomCode("  AbCdEf  "))
}
