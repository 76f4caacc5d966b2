package history

import (
	"time"

	"github.com/pseudomuto/roadwork/pkg/migrator"
)

// Migration states derived from the history table.
const (
	Pending    State = "pending"
	Applied    State = "applied"
	RolledBack State = "rolled back"
)

type (
	// State is the derived status of one migration.
	State string

	// MigrationStatus pairs a migration directory name with its state and the
	// time of its latest history entry (zero when pending).
	MigrationStatus struct {
		Name      string
		State     State
		AppliedAt time.Time
	}

	// Set indexes history entries by migration for status lookups. The latest
	// entry for each migration wins.
	Set struct {
		latest map[string]*Entry
	}
)

// NewSet builds a Set from entries ordered oldest first, as returned by Load.
func NewSet(entries []*Entry) *Set {
	latest := make(map[string]*Entry, len(entries))
	for _, entry := range entries {
		latest[entry.Name] = entry
	}

	return &Set{latest: latest}
}

// Latest returns the most recent entry for the migration, or nil.
func (s *Set) Latest(name string) *Entry {
	return s.latest[name]
}

// State returns Applied when the latest entry went up, RolledBack when it went
// down, and Pending when there are no entries.
func (s *Set) State(name string) State {
	entry, ok := s.latest[name]
	switch {
	case !ok:
		return Pending
	case entry.Direction == migrator.Down:
		return RolledBack
	default:
		return Applied
	}
}

// Status computes the state of each named migration, preserving the order of
// names.
//
// Example:
//
//	entries, _ := recorder.Load(ctx)
//	for _, st := range history.Status(entries, names) {
//		fmt.Printf("%-40s %s\n", st.Name, st.State)
//	}
func Status(entries []*Entry, names []string) []*MigrationStatus {
	set := NewSet(entries)

	statuses := make([]*MigrationStatus, 0, len(names))
	for _, name := range names {
		st := &MigrationStatus{Name: name, State: set.State(name)}
		if entry := set.Latest(name); entry != nil {
			st.AppliedAt = entry.AppliedAt
		}

		statuses = append(statuses, st)
	}

	return statuses
}
