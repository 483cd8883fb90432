package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/skylab2iai/fits-downloader/internal/model"
)

// Well-known catalog columns, matched case-insensitively when scanning.
const (
	columnName      = "NAME"
	columnPlateName = "PLATE_NAME"
	columnFITSLink  = "LINK_FTS"
)

// Repository issues read-only lookups against the plate-frame catalog.
//
// All methods are synchronous and side-effect-free. A storage failure
// propagates unmodified; "no rows" is an empty result set, never an error.
type Repository struct {
	db *Database
}

// NewRepository creates a Repository over the shared catalog handle.
func NewRepository(db *Database) *Repository {
	return &Repository{db: db}
}

// FrameByName returns the frame with the given name.
//
// Zero or one row is expected but not enforced; an empty set means the
// frame does not exist.
func (r *Repository) FrameByName(name string) (model.Frames, error) {
	return r.queryFrames("SELECT * FROM plate_frame WHERE name = ?", name)
}

// AllFrames returns every frame in the catalog. No pagination.
func (r *Repository) AllFrames() (model.Frames, error) {
	return r.queryFrames("SELECT * FROM plate_frame")
}

// FramesByPlate returns all frames belonging to the given plate.
func (r *Repository) FramesByPlate(plateName string) (model.Frames, error) {
	return r.queryFrames("SELECT * FROM plate_frame WHERE plate_name = ?", plateName)
}

// FramesByQuery runs a caller-supplied query with positional parameters.
//
// The query is passed through ValidateQuery first; a rejection is returned
// as-is and nothing is executed. Accepted queries run verbatim, so callers
// can select arbitrary columns; whatever the row carries beyond the
// well-known columns lands in Frame.Fields.
func (r *Repository) FramesByQuery(query string, params ...any) (model.Frames, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}
	return r.queryFrames(query, params...)
}

// PlateByName returns the plate with the given name.
func (r *Repository) PlateByName(name string) (model.Plates, error) {
	return r.queryPlates("SELECT * FROM plate WHERE name = ?", name)
}

// AllPlates returns every plate in the catalog.
func (r *Repository) AllPlates() (model.Plates, error) {
	return r.queryPlates("SELECT * FROM plate")
}

func (r *Repository) queryFrames(query string, params ...any) (model.Frames, error) {
	rows, err := r.db.DB().Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}
	return scanRows(rows, frameFromRow)
}

func (r *Repository) queryPlates(query string, params ...any) (model.Plates, error) {
	rows, err := r.db.DB().Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}
	return scanRows(rows, plateFromRow)
}

// scanRows drains rows into a slice, handing each row's column names and
// values to build. Every column is scanned generically because ad-hoc
// queries carry arbitrary column sets.
func scanRows[T any](rows *sql.Rows, build func(cols []string, vals []any) T) ([]T, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []T
	for rows.Next() {
		vals := make([]any, len(cols))
		dests := make([]any, len(cols))
		for i := range vals {
			dests[i] = &vals[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			// The driver may hand TEXT columns back as byte slices.
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out = append(out, build(cols, vals))
	}
	return out, rows.Err()
}

func frameFromRow(cols []string, vals []any) model.Frame {
	frame := model.Frame{Fields: make(map[string]any)}
	for i, col := range cols {
		switch {
		case strings.EqualFold(col, columnName):
			frame.Name = stringValue(vals[i])
		case strings.EqualFold(col, columnPlateName):
			frame.PlateName = stringValue(vals[i])
		case strings.EqualFold(col, columnFITSLink):
			frame.FITSLink = stringValue(vals[i])
		default:
			frame.Fields[col] = vals[i]
		}
	}
	return frame
}

func plateFromRow(cols []string, vals []any) model.Plate {
	plate := model.Plate{Fields: make(map[string]any)}
	for i, col := range cols {
		if strings.EqualFold(col, columnName) {
			plate.Name = stringValue(vals[i])
			continue
		}
		plate.Fields[col] = vals[i]
	}
	return plate
}

// stringValue renders a scanned column as a string, treating NULL as empty.
func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}
