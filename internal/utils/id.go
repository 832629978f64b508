package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// NewTaskID returns a time-ordered identifier, so ids sort in creation order.
func NewTaskID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate task id: %w", err)
	}
	return id.String(), nil
}

// NewAccountID returns a random account identifier.
func NewAccountID() string {
	return uuid.NewString()
}
