package webhook

import (
	"regexp"
	"strings"
)

var noteKVRe = regexp.MustCompile(`(?i)(?:^|[\s,;])([a-zA-Z0-9_]+)=([a-zA-Z0-9-]+)`)

// ParseKeyFromNote extracts a key=value token from the free-text note the checkout attaches
// to a payment. Notes may carry prefixes, punctuation and user text around the tokens.
//
// Example note:
//
//	"trek checkout: booking_id=3f9a12c4-... kind=initial"
func ParseKeyFromNote(note string, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}

	for _, m := range noteKVRe.FindAllStringSubmatch(note, -1) {
		if len(m) != 3 {
			continue
		}
		if strings.EqualFold(m[1], key) {
			return m[2]
		}
	}
	return ""
}
