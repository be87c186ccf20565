// Package fetch wraps net/http with the retry policy the upstream metadata
// services require: HTTP 429 responses are retried with a server-supplied
// or jittered backoff up to a bounded attempt count. Backoff sleeps are
// context-aware and block only the calling goroutine.
package fetch
