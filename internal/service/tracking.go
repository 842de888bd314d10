package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const trackingPrefix = "REQ-"

// TrackingGenerator issues external tracking codes.
type TrackingGenerator func(now time.Time) string

// GenerateTrackingID returns REQ-<unix ms>-<8 hex>. The suffix comes from a
// random uuid so codes issued in the same millisecond still differ.
func GenerateTrackingID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return trackingPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}
