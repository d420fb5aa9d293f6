package adjustments

import (
	"fmt"
	"log/slog"
)

// Warn logs a recoverable missing-field condition as "<message>. | <name>".
func Warn(category, name, message string) {
	slog.Warn(fmt.Sprintf("%s. | %s", message, name),
		"record", name,
		"category", category)
}
