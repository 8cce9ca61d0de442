package store

type storeError string

const (
	// ErrNotFound is returned by lookup methods when no row matches.
	ErrNotFound = storeError("not found")

	// ErrDuplicate is returned by Insert when an event with the same
	// external id already exists. The pipeline checks before inserting, so
	// this only fires as a uniqueness-constraint backstop.
	ErrDuplicate = storeError("duplicate external id")
)

func (e storeError) Error() string {
	return string(e)
}
