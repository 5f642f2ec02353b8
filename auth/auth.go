// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrMissingToken    = errors.New("missing participant token")
	ErrInvalidToken    = errors.New("invalid token format")
)

// tokenBytes is the entropy of a participant token (192 bits).
const tokenBytes = 24

// GenerateAdminKey derives the instructor key for a classroom session.
// This is deterministic and verifiable
func GenerateAdminKey(sessionID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(sessionID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the session
func ValidateAdminKey(sessionID, adminKey, salt string) error {
	expected := GenerateAdminKey(sessionID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// GenerateParticipantToken creates an opaque random token for one student.
// The engine only ever sees this value, never who holds it.
func GenerateParticipantToken() (string, error) {
	b := make([]byte, tokenBytes)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate participant token: %w", err)
	}
	// URL-safe base64 without padding
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidateParticipantToken checks the shape of a token presented by a client.
// It does not prove the token was issued by this server; the ledger only
// needs tokens to be stable and unguessable.
func ValidateParticipantToken(token string) error {
	if token == "" {
		return ErrMissingToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != tokenBytes {
		return ErrInvalidToken
	}
	return nil
}
