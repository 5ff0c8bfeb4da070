// Package pgstore implements the user store on PostgreSQL via pgx.
//
// # Layout
//
// One users table, with unique indexes on username and email. The
// refresh_token column holds the user's single current refresh token;
// empty string means no live session.
//
// # Atomicity
//
// Rotation is a conditional UPDATE whose WHERE clause requires the stored
// token to equal the presented one. Postgres row locking serializes
// concurrent updates to the same row, so exactly one concurrent refresh
// wins and the rest observe a zero-row update.
//
// Schema management uses goose migrations embedded in the binary; see
// [Migrate].
package pgstore
