// Package errors provides structured, coded errors for loom.
//
// Every error loom reports has a unique code (e.g. "E101") that maps to a
// short message, a longer explanation and a documentation link. Errors are
// built from the registry and decorated fluently:
//
//	err := errors.New("E102").
//	    WithOp("insert").
//	    WithDetail("parent <ul>, child <li>").
//	    Wrap(cause)
//
// # Error Categories
//
//   - reconcile: hook misuse, component failures
//   - host: host adapter rejections
//   - config: configuration file problems
//   - protocol: malformed frames and events
//   - snapshot: snapshot store failures
//
// # Matching
//
// Two LoomErrors match under errors.Is when their codes are equal, so
// callers can compare against the sentinels exported by each package
// without caring about the attached detail.
package errors
