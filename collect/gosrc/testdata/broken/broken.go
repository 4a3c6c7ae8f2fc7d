// Package broken does not type-check.
package broken

//namedargs:export
func Load(items []Missing, limit int) {}

//namedargs:export
func Count(n int) int { return n }
