package session

import (
	"strings"

	"github.com/movieon/auth-service/internal/model"
)

// DeviceType classifies a User-Agent header into the coarse device classes
// recorded in login history.  Tablets are checked before mobile because
// Android tablet agents also contain "android", and iPads identify only as
// "ipad".  Anything unrecognized lands in "other".
func DeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case ua == "":
		return model.DeviceOther
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return model.DeviceTablet
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		return model.DeviceMobile
	case strings.Contains(ua, "windows") || strings.Contains(ua, "macintosh") ||
		strings.Contains(ua, "x11") || strings.Contains(ua, "linux"):
		return model.DevicePC
	default:
		return model.DeviceOther
	}
}
