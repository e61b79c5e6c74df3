// Package chart builds, renders and persists the combined diagnostic chart
// of a report: a horizontal boxplot stacked above a histogram of the same
// values, heights 1:4, sharing the x range.
//
// A Spec is a plain serializable value. It can be saved as a msgpack
// snapshot and reloaded with LoadSnapshot, or rendered into any of the
// formats listed by Formats through gonum.org/v1/plot.
package chart
