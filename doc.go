// Package corosched implements a cooperative, single-threaded coroutine
// scheduler, designed to be embedded in an event-driven host runtime
// (corohost.Loop, or any other HostLoop implementation).
//
// A Coroutine yields one of four things at a time: control back to the
// scheduler (Plain), delegation to a subcoroutine (Sub), suspension on an
// external event (Async), or completion with a result (ReturnVal). A Task
// drives a single top-level Coroutine (and its subcoroutine stack) through
// bounded micro-steps; a Scheduler drives many Tasks, bounded per-batch, in
// lockstep with its HostLoop's own tick.
package corosched
