// Package device derives session metadata from a User-Agent header.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// Session data keys written at session creation.
const (
	DataKeyName        = "device"
	DataKeyFingerprint = "device_fingerprint"
)

// DisplayName returns "Browser on OS" (e.g. "Chrome on macOS", "Safari on iPhone").
func DisplayName(userAgent string) string {
	if userAgent == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}

// Fingerprint hashes browser family, major version, OS and form factor. The
// client IP is not part of it. An empty User-Agent has no fingerprint.
func Fingerprint(userAgent string) string {
	if userAgent == "" {
		return ""
	}

	ua := useragent.New(userAgent)
	browser, version := ua.Browser()
	major, _, _ := strings.Cut(version, ".")
	if major == "" {
		major = "unknown"
	}
	platform := "desktop"
	if ua.Mobile() {
		platform = "mobile"
	}

	data := fmt.Sprintf("%s|%s|%s|%s", normalize(browser), major, normalize(ua.OS()), platform)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return s
}

// Annotate returns a copy of data carrying the device keys for userAgent.
// Keys the caller already supplied are kept.
func Annotate(data map[string]any, userAgent string) map[string]any {
	out := make(map[string]any, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	if userAgent == "" {
		return out
	}
	if _, ok := out[DataKeyName]; !ok {
		out[DataKeyName] = DisplayName(userAgent)
	}
	if _, ok := out[DataKeyFingerprint]; !ok {
		out[DataKeyFingerprint] = Fingerprint(userAgent)
	}
	return out
}
