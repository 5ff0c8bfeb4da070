// Package password implements password hashing and verification with Argon2id defaults.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Verification reads the cost parameters back out of the stored hash, so old
// hashes remain verifiable after the configured costs change.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Minimum length is the one
// policy check it carries, because it gates Hash itself; everything else
// (credential lookup, error mapping) is the Engine's job.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other package in this module.
//   - Log plaintext passwords or hash parameters at runtime.
package password
