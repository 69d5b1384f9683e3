// Package corohost provides a minimal, single-goroutine reference host
// runtime satisfying corosched.HostLoop: a repeating zero-delay tick plus a
// min-heap of one-shot timers, driven from a single Run call.
//
// It deliberately omits everything an embedding host doesn't need for a
// cooperative scheduler's sake: there is no I/O multiplexing, no
// multi-mode wakeup, no atomic state machine. A GUI toolkit's event loop,
// or an existing server's own reactor, can satisfy corosched.HostLoop
// directly, without corohost, by implementing the same five methods.
package corohost
