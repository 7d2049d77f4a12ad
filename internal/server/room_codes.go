package server

import (
	"errors"
	"math/rand"
	"strings"
)

// Room code alphabet drops 0/1 to avoid O/I confusion when codes are
// read aloud or typed from a screen.
const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ23456789"

const roomCodeLength = 6

func GenerateRoomCode(usedCodes map[string]bool) string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
		}
		roomCode := string(code)

		if !usedCodes[roomCode] {
			return roomCode
		}
	}
}

func ValidateRoomCode(code string) error {
	if len(code) != roomCodeLength {
		return errors.New("room code must be exactly 6 characters")
	}

	for _, ch := range strings.ToUpper(code) {
		if !strings.ContainsRune(roomCodeAlphabet, ch) {
			return errors.New("room code contains invalid characters")
		}
	}

	return nil
}

// NormalizeRoomCode makes codes case-insensitive on input.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
