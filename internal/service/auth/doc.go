// Package auth verifies bearer tokens, issues them at login, hashes passwords
// and decides which roles may reach an operation.
package auth
