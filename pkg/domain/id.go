package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ID identifies a datum within its collection.
type ID string

// NewID returns a random (version 4) UUID string.
func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string { return string(id) }

// IsZero reports whether the identity has not been assigned.
func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

func parseID(value any) (ID, error) {
	switch typed := value.(type) {
	case nil:
		return "", nil
	case ID:
		return typed, nil
	case string:
		if strings.TrimSpace(typed) == "" {
			return "", Invalid("id", "must not be blank", typed)
		}
		return ID(typed), nil
	case uuid.UUID:
		return ID(typed.String()), nil
	default:
		return "", Invalid("id", "must be a string", value)
	}
}
