// Package pagination sanitizes limit/offset inputs for list endpoints.
package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 1000
)

// Params holds sanitized pagination inputs for repositories.
type Params struct {
	Limit  int
	Offset int
}

// Normalize clamps limit into [1, max] and offset to >= 0, substituting
// def when limit is unset. Zero def/max fall back to the package defaults.
func Normalize(limit, offset, def, max int) Params {
	if def <= 0 {
		def = DefaultLimit
	}
	if max <= 0 {
		max = MaxLimit
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return Params{Limit: limit, Offset: offset}
}
