package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicate reports whether err is a unique constraint violation. Drivers
// without error translation are matched on their message.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
