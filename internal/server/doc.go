// Package server accepts kv client connections and dispatches their requests
// against one shared store.
//
// Each accepted connection runs on its own goroutine. The connection greets
// the client with a text packet, then answers every GET, SET, DEL and PING
// with exactly one text reply in request order. A protocol violation closes
// only the offending connection.
package server
