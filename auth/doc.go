// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the instructor key and participant token helpers.

# Admin Keys

The instructor key uses HMAC-SHA256 over the classroom session id:

	adminKey := auth.GenerateAdminKey(sessionID, salt)
	err := auth.ValidateAdminKey(sessionID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same session id and salt always produce the same key, so nothing needs
to be stored. main prints the key once at startup.

# Participant Tokens

Participant tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateParticipantToken()

A student's browser requests one token and presents it on every submission.
The token is the only identity the poll engine sees. It is never logged,
broadcast, or archived.
*/
package auth
