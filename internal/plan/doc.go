// Package plan defines the operator-authored provisioning plan: an ordered
// list of steps whose constructor arguments are either literal values or
// references to the identity produced by an earlier step.
//
// The literal order of a Plan is its execution order. Validation does not
// sort anything; it only checks that the given order already satisfies every
// reference and depends_on constraint, and it never performs I/O.
package plan
