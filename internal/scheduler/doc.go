// Package scheduler decides which steps of a dependency graph may start.
//
// A step is ready once every step it depends on has committed successfully.
// The scheduler only tracks unmet dependency counts; it never executes
// anything and is driven by a single coordinating goroutine, so it needs no
// locking of its own.
package scheduler
