package download

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// apkMagic is the local file header signature that starts every APK (a zip archive)
var apkMagic = []byte("PK\x03\x04")

// Checksum returns the hex SHA-256 of everything read from r
func Checksum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// LooksLikeAPK reports whether head starts with the zip local file header
func LooksLikeAPK(head []byte) bool {
	return bytes.HasPrefix(head, apkMagic)
}
