package utils

import "github.com/google/uuid"

// GenerateActivationID generates a unique ID for one activation
func GenerateActivationID() string {
	return uuid.NewString()
}
