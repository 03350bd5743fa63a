// Package sse serves event streams to HTTP clients.
//
// The Handler negotiates the text/event-stream media type, resolves the
// channels a connection subscribes to, and then either streams frames
// directly over the open response or, for requests arriving through a
// GRIP proxy, writes hold directives and lets the proxy carry the
// long-lived connection.
package sse
