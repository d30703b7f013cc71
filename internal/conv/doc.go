// Package conv provides overflow-checked integer arithmetic for sizes and
// ranges supplied by callers, so an oversized request surfaces as an error
// instead of a wrapped-around index.
package conv
