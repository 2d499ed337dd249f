// Package session owns the per-connection packet transport.
//
// Ownership boundary:
// - Socket: one duplex stream plus one codec, send/receive whole packets
// - transport defaults for dialing peers
// - retry/backoff primitives for client dials
package session
