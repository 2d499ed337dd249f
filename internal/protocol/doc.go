// Package protocol owns the kv wire contract and its codec.
//
// Ownership boundary:
// - packet types and the closed body variant set
// - request/text body encoding on top of frame headers
// - incremental decode over an accumulating buffer
//
// Wire layout:
//
//	frame   = tag(1) body_len(4 BE) body(body_len)
//	request = key_len(4 BE) key [value_len(4 BE) value]
//	text    = raw UTF-8
//	ping    = empty
package protocol
