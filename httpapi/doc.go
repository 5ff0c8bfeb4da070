// Package httpapi exposes the session-auth engine over HTTP with echo.
//
// # Transport
//
// Login and refresh set two HttpOnly cookies, accessToken and refreshToken,
// and also return both tokens in the JSON body for non-browser clients.
// Refresh reads the token from the cookie first and falls back to the body
// exactly once. Guarded routes accept a Bearer Authorization header or the
// access-token cookie.
//
// # Error shape
//
// Failures are JSON objects with machine-readable code and human message
// fields. Unknown users and wrong passwords share one 401 response.
package httpapi
