// Package auth issues and verifies the bearer tokens that guard the
// Tickbridge HTTP API.
//
// Tokens are HS256 JWTs carrying a subject, a unique token ID and an
// expiry. There is no user store: whoever holds the signing secret can
// mint tokens with the "tickbridge token" command.
package auth
