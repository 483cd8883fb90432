package model

// Plate represents one photographic plate from the Skylab catalog.
//
// A plate groups many frames; frame rows reference it through their
// PLATE_NAME column.
type Plate struct {
	// Name is the unique plate identifier (catalog column NAME).
	Name string

	// Fields holds the remaining columns of the plate row, keyed by
	// column name as returned by the database.
	Fields map[string]any
}

// Plates is an ordered result set of plate rows.
type Plates []Plate

// Empty reports whether the result set contains no rows.
func (ps Plates) Empty() bool {
	return len(ps) == 0
}
