// Package batch provides helpers for tools that accept one target or many:
// parsing parameters that may be a single string or an array, running an
// operation per target, and formatting the aggregated results with partial
// failures preserved.
package batch
