package utils

import (
	"github.com/google/uuid"
)

// GenerateUUID returns a fresh ticket identifier.
func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}
