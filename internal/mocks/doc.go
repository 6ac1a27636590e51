// Package mocks provides function-field test doubles for the service
// interfaces consumed by the HTTP layer. Set a ...Fn field to control a
// call; otherwise the zero-value defaults are returned.
package mocks
