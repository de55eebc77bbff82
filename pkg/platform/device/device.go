// Package device turns a raw User-Agent header into the short device label
// stored with verification attempts ("Chrome on Mac OS X").
package device

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// ParseUserAgent returns "<browser> on <platform>" for display and audit.
func ParseUserAgent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unknownDevice
	}

	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	os := ua.OS()
	if ua.Mobile() && ua.Platform() != "" && !strings.Contains(os, ua.Platform()) {
		os = ua.Platform() + " " + os
	}
	if strings.TrimSpace(os) == "" {
		os = ua.Platform()
	}
	if strings.TrimSpace(os) == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(fmt.Sprintf("%s on %s", strings.TrimSpace(browser), strings.TrimSpace(os)))
}
