// Package types defines the shared data model for camstack: the Step
// declaration consumed by the pipeline executor, the StepOutcome/RunReport
// result model, and the filesystem interface used by all side-effecting
// components.
//
// Everything in this package is plain data. Steps are built once, at
// pipeline-construction time, and never mutated afterwards; outcomes are
// appended to a RunReport and never touched again.
package types
