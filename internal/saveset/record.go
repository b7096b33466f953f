// internal/saveset/record.go
package saveset

import (
	"fmt"
	"time"
)

// Category classifies a file found in a save directory
type Category uint8

const (
	Excluded Category = iota
	Primary
	Sidecar
)

func (c Category) String() string {
	switch c {
	case Primary:
		return "primary"
	case Sidecar:
		return "sidecar"
	case Excluded:
		return "excluded"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// File extensions of the two archived categories
const (
	PrimaryExt = ".ess"
	SidecarExt = ".skse"
)

// Record is one file selected for archival
type Record struct {
	Name     string // base file name, the identity inside an archive
	Path     string // location on disk
	Category Category
	Index    uint64
	Size     int64
	ModTime  time.Time
	Reason   string // why an excluded file was skipped
}

// FileSet is the classified content of a save directory
type FileSet struct {
	Dir      string
	Primary  []Record
	Sidecars []Record
	Excluded []Record
}

// OrderedFileSet holds primary saves then sidecars, each ascending by index
type OrderedFileSet struct {
	Primary  []Record
	Sidecars []Record
}

// Len returns the number of archived records
func (s *OrderedFileSet) Len() int {
	return len(s.Primary) + len(s.Sidecars)
}

// All returns primary records followed by sidecars
func (s *OrderedFileSet) All() []Record {
	all := make([]Record, 0, s.Len())
	all = append(all, s.Primary...)
	return append(all, s.Sidecars...)
}
