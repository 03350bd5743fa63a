// Package errors provides the unified error type for eventstream.
//
// Subscription-phase failures (negotiation, signature, resume marker,
// channel resolution) map to terminal HTTP responses and never cross
// component boundaries as values. Only delivery failures do: a failed
// external publish surfaces as DELIVERY_FAILED through the publisher and
// sink, and a broken downstream connection surfaces as PIPELINE_FAILED
// from the direct delivery loop.
package errors
