// Package grip implements the realtime-holding proxy collaborator for
// GRIP-compatible reverse proxies (Pushpin, Fanout).
//
// Three concerns live here, each consumed by the core through a narrow
// surface:
//
//   - Detection: reading and verifying the Grip-Sig request header (a JWT
//     signed by the proxy) to decide whether the request is proxied, signed,
//     and whether a signature is required.
//   - Hold directives: response headers instructing the proxy to keep the
//     client connection open, bound to named channels, with a keep-alive
//     heartbeat.
//   - Publishing: POSTing http-stream format items to the proxy's control
//     endpoint so held connections receive content.
package grip
