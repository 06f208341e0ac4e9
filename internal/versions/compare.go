// Package versions orders Android app versions and reports the build
// version of this binary.
package versions

import "github.com/Masterminds/semver/v3"

// Newer reports whether version (code, name) supersedes (otherCode, otherName).
// The integer version code decides; names only break ties between equal codes.
func Newer(code int64, name string, otherCode int64, otherName string) bool {
	if code != otherCode {
		return code > otherCode
	}
	return NewerName(name, otherName)
}

// NewerName reports whether name is strictly greater than other, comparing as
// semantic versions when both parse and as plain strings otherwise. Android
// names such as "2.24.1.76" are not semver and take the string path.
func NewerName(name, other string) bool {
	a, errA := semver.NewVersion(name)
	b, errB := semver.NewVersion(other)
	if errA != nil || errB != nil {
		return name > other
	}
	return a.GreaterThan(b)
}
