// Package fsmhelper lets a stateless state handler of a finite-state-machine
// orchestration engine issue outbound calls, hand control back to the
// engine, and resume later knowing what it sent.
//
// The central type is [Facade], which turns a handler's intent into an
// engine Action while recording the call in a transaction-scoped [Holder].
// [RetryFacade] replays the recorded call under a per-service retry budget.
// Expected failures travel as [Either] values or abort actions, never as
// panics.
package fsmhelper
