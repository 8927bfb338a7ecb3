package util

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNumber returns ORD-YYYYMMDD-XXXXXXXX where the suffix is
// eight upper-case hex characters taken from a random UUID.
func GenerateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD-" + now.UTC().Format("20060102") + "-" + suffix
}
