// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config file. The resulting
// Config is constructed once at start-up and injected into the codec, token
// service and messaging components; nothing reads process state afterwards.
package config
