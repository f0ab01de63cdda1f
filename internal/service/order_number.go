package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultOrderPrefix = "RR"

// NewOrderNumber formats <prefix>-<base36 unix millis>-<6 random chars>, upper case
func NewOrderNumber(prefix string, now time.Time) string {
	stamp := strconv.FormatInt(now.UnixMilli(), 36)
	suffix := uuid.NewString()[:6]
	return strings.ToUpper(prefix + "-" + stamp + "-" + suffix)
}
