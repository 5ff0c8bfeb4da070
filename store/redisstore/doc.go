// Package redisstore implements the user store on Redis.
//
// # Layout
//
// Each user is a hash at <prefix>:user:<id>. Two string keys,
// <prefix>:uname:<username> and <prefix>:email:<email>, index back to the
// user ID so login can resolve either identifier with one GET.
//
// # Atomicity
//
// Creation and refresh-token rotation run as Lua scripts. Rotation is a
// compare-and-swap: the script rejects the swap unless the presented token
// equals the stored one, which is what turns concurrent refreshes into one
// winner and N-1 reuse errors.
package redisstore
