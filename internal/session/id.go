package session

import (
	"fmt"

	"ditroboticstw/internal/utils"
)

// 256 bits of entropy.
const idBytes = 32

// GenerateID returns a new random session id.
func GenerateID() (string, error) {
	id, err := utils.RandomString(idBytes)
	if err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return id, nil
}
