// Package conv provides safe integer type conversion utilities.
//
// Slot indices inside the retention heap are int32; capacities that flow into
// them from callers are checked here.
package conv
