// Package dag models the dependency relation between the steps of a plan as
// a directed acyclic graph. Edges point from a dependency to its dependent.
//
// Graphs are built from an already validated plan, so every edge points from
// an earlier step to a later one and cycles cannot be represented. Node
// queries return IDs in plan order to keep scheduling deterministic.
package dag
