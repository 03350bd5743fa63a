// Package bus implements the process-local publish/subscribe registry that
// fans events out to connection subscriptions.
//
// The bus is channel-keyed and synchronous: Publish invokes every listener
// currently attached to the channel before it returns, which fixes
// per-channel delivery order to publish order. Nothing is buffered or
// persisted; publishing to a channel with no listeners is a normal outcome.
//
// Listener records are stored by id rather than by raw callback, so
// Unsubscribe is idempotent and the no-leak invariant (listener count
// returns to its prior value after teardown) is independently verifiable
// through ListenerCount.
package bus
