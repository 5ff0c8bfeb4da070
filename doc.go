// Package sessionauth implements the session authentication core of the
// Interviewly platform: credential verification, issuance of a short-lived
// JWT access token and a long-lived rotating JWT refresh token, and the
// rotation protocol that keeps exactly one refresh token valid per user.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// sessionauth is the public surface. It exposes [Engine], [Builder],
// [Config], the [UserStore] contract, and sentinel errors. Token signing
// lives in token/, password hashing in password/, and the store adapters in
// store/. The HTTP transport binding (cookies, routes, error mapping) lives
// in httpapi/ and is the only place that translates sentinel errors into
// wire responses.
//
// # Rotation invariant
//
// A user owns at most one live refresh token. Login overwrites it, Refresh
// replaces it through a store-level compare-and-swap, and Logout clears it.
// The Engine never performs a separate read followed by a separate write on
// the refresh-token field; the swap is a single conditional operation inside
// the store, so concurrent refreshes of the same token produce exactly one
// winner.
package sessionauth
