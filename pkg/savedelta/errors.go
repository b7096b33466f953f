// pkg/savedelta/errors.go
package savedelta

import (
	"errors"
	"fmt"
	"strings"
)

// Fatal error categories. Every failure of an archival or restore run wraps
// exactly one of these, so callers can branch with errors.Is.
var (
	// ErrDiscovery is returned when the save directory is unreadable, holds no
	// primary saves, or a file name does not carry a parsable save index
	ErrDiscovery = errors.New("discovery error")

	// ErrOrderingConflict is returned when two saves of one category share an index
	ErrOrderingConflict = errors.New("ordering conflict")

	// ErrCodecFormat is returned for malformed or corrupt embedded-compression data
	ErrCodecFormat = errors.New("codec format error")

	// ErrContainerFormat is returned for an unrecognized archive version or structure
	ErrContainerFormat = errors.New("container format error")

	// ErrIntegrity is returned when the payload does not match the boundary table
	ErrIntegrity = errors.New("integrity error")
)

// Stage names used in StageError
const (
	StageDiscover   = "discover"
	StageOrder      = "order"
	StageRead       = "read"
	StageDecode     = "decode"
	StageCompress   = "compress"
	StageContainer  = "container"
	StageDecompress = "decompress"
	StageEncode     = "encode"
	StageWrite      = "write"
)

// StageError attaches the pipeline position to a failure: which stage, which
// file and which order index. Index is -1 when no record is involved.
type StageError struct {
	Kind  error
	Stage string
	Name  string
	Index int64
	Err   error
}

func (e *StageError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Stage)
	if e.Name != "" {
		fmt.Fprintf(&sb, " %s", e.Name)
	}
	if e.Index >= 0 {
		fmt.Fprintf(&sb, " (index %d)", e.Index)
	}
	if e.Kind != nil {
		fmt.Fprintf(&sb, ": %v", e.Kind)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap exposes both the category and the underlying cause
func (e *StageError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Fail builds a StageError. The category is dropped from the new layer when
// err already wraps it.
func Fail(kind error, stage, name string, index int64, err error) error {
	if kind != nil && errors.Is(err, kind) {
		kind = nil
	}
	return &StageError{Kind: kind, Stage: stage, Name: name, Index: index, Err: err}
}
