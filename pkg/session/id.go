package session

import (
	"fmt"

	"github.com/google/uuid"
)

// ID identifies a session. It is a random UUID in canonical form.
type ID string

// NewID returns a fresh random ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// ParseID validates s and returns it as an ID in canonical form.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidID, s, err)
	}
	return ID(u.String()), nil
}

func (id ID) String() string {
	return string(id)
}
