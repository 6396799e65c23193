package apc

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Hasher maps a logical key to the fixed-shape identifier of its backend slot.
// It must be deterministic.
type Hasher func(key string) string

// MD5 is the default hasher: 32 lowercase hex characters.
func MD5(key string) string {
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// SHA256 produces 64 lowercase hex characters.
func SHA256(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// BLAKE2b produces 64 lowercase hex characters using BLAKE2b-256.
func BLAKE2b(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
