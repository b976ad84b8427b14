// Package auth issues and verifies session tokens for the link service.
//
// A token is an HS256 JWT carrying the user id and email. Each token has a
// unique id (jti) so it can be revoked before it expires; revocations live in a
// [Revoker], either in process memory or in Redis.
package auth
