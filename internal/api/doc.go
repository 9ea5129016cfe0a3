// Package api implements the HTTP transport for the Guardian API:
// request construction, the per-attempt timeout scope, connection
// pooling, failure classification, and the retry/backoff engine.
//
// The public guardian package wraps this client and converts its
// errors to the public taxonomy; nothing here is part of the SDK's
// stable surface.
package api
