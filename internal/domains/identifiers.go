package domains

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var packageNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z][a-zA-Z0-9_]*)+$`)

// ValidPackageName reports whether name is a dotted Android application id
// such as "org.example.app"
func ValidPackageName(name string) bool {
	return packageNamePattern.MatchString(name)
}

// PackageNameFromPlayURL extracts the id query parameter from a Play Store
// details URL. It returns false when the host is not Play or the id is not a
// valid package name.
func PackageNameFromPlayURL(playURL string) (string, bool) {
	u, err := url.Parse(playURL)
	if err != nil {
		return "", false
	}
	if !strings.Contains(strings.ToLower(u.Hostname()), "play.google.com") {
		return "", false
	}

	id := u.Query().Get("id")
	if !ValidPackageName(id) {
		return "", false
	}
	return id, true
}

// ValidDeviceID reports whether id is a canonical RFC 4122 version 4 UUID
func ValidDeviceID(id string) bool {
	if len(id) != 36 {
		return false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return parsed.Version() == 4 && parsed.Variant() == uuid.RFC4122
}
