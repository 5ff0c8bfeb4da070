// Package token signs and verifies the access/refresh JWT pair.
//
// # Design
//
// Both token types carry the same minimal claim set (sub, iat, exp, jti,
// iss) but are signed with two distinct HMAC secrets, so possession of one
// token type never allows forging the other. Access tokens are stateless;
// refresh tokens gain their server-side validity in the store layer, not
// here.
//
// # What this package must NOT do
//
//   - Touch the user store or any I/O.
//   - Import sessionauth or any sibling package.
package token
