// Package stream binds one connection to the bus for its lifetime.
//
// A Subscription is a pull-based iterator over the events addressed to its
// channel set. The bus callback never blocks — accepted events are queued
// internally — while the consumer side only advances when the connection is
// ready for the next frame, so downstream pressure propagates without
// losing anything the bus already delivered.
//
// Frames is the serializer stage: a one-to-one, order-preserving transform
// from event records to encoded wire frames.
package stream
