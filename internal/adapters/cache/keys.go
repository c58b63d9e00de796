// Package cache stores analyzed datasets keyed by their canonical input.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

const (
	profilePrefix = "profile:"
	uploadPrefix  = "upload:"
)

// ProfileKey returns the store key of a live fetch: profile:{username}:{limit}.
// Usernames are case-insensitive on the platform, so the key is lower-cased.
func ProfileKey(username string, limit int) string {
	return profilePrefix + strings.ToLower(strings.TrimSpace(username)) + ":" + strconv.Itoa(limit)
}

// UploadDigest returns the hex SHA-256 of an uploaded file.
func UploadDigest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// UploadKey returns the store key of an upload digest: upload:{digest}.
func UploadKey(digest string) string {
	return uploadPrefix + digest
}
