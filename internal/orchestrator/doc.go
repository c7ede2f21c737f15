// Package orchestrator executes a provisioning plan against a
// provision.Client and produces a Result.
//
// # Execution model
//
// The plan is validated first; an invalid plan fails with
// *plan.InvalidPlanError before any provisioning call is made. Steps are then
// executed in plan order, one at a time. For every step the orchestrator
// resolves reference arguments against the run's identity.Registry, calls the
// client, and commits the returned identity under the step's name.
//
// The first failure stops the run: no further step is started, and the
// Result carries the partial registry, the failing step and its error. There
// is no retry and no rollback; provisioning is treated as irreversible.
//
// # Concurrency
//
// WithWorkers(n > 1) enables a worker pool that runs mutually independent
// steps in parallel. A step is dispatched only after every step it references
// has committed, so reads of the registry are always sequenced after the
// writes they depend on. After a failure no new step is dispatched; steps
// already in flight are allowed to finish and their identities are kept.
//
// # Cancellation
//
// Cancelling the run context stops the run before the next step starts and
// yields *CancelledError. A provisioning call that is already in flight is
// never interrupted: the client receives a context detached from the run's
// cancellation.
package orchestrator
