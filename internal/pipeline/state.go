package pipeline

import (
	"photo-curator/internal/domain"
)

// State is a step of one file's import.
type State int

const (
	Pending State = iota
	MetadataExtracted
	Moved
	ThumbnailCreated
	Registered  // terminal success
	Quarantined // terminal failure
)

var stateNames = [...]string{
	Pending:           "pending",
	MetadataExtracted: "metadata_extracted",
	Moved:             "moved",
	ThumbnailCreated:  "thumbnail_created",
	Registered:        "registered",
	Quarantined:       "quarantined",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Registered || s == Quarantined
}

// Outcome is the result of one file's import.
//
// State is Registered with Record set, or Quarantined with QuarantinedAt,
// FailedIn and Err set. Err is always a *domain.Error.
type Outcome struct {
	Source string
	State  State

	Record domain.CatalogRecord

	QuarantinedAt string
	FailedIn      State // last state reached before the failure
	Err           error
}

// OK reports whether the file was registered.
func (o Outcome) OK() bool { return o.State == Registered }

// Kind is the failure classification, empty on success.
func (o Outcome) Kind() domain.ErrorKind {
	return domain.KindOf(o.Err)
}
