package ids

import (
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// NewOperationID returns a time-sortable id for bulk operations and audit entries.
func NewOperationID() string {
	return ksuid.New().String()
}

// NewUUID returns a random UUID string.
func NewUUID() string {
	return uuid.NewString()
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
