// internal/saveset/order.go
package saveset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

const namePrefix = "Save"

// ParseIndex extracts the save counter from a name of the form
// Save<digits>_<rest>. Anything else is rejected.
func ParseIndex(name string) (uint64, error) {
	if !strings.HasPrefix(name, namePrefix) {
		return 0, fmt.Errorf("%w: %q does not start with %q", savedelta.ErrDiscovery, name, namePrefix)
	}
	digits, _, found := strings.Cut(name[len(namePrefix):], "_")
	if !found {
		return 0, fmt.Errorf("%w: %q has no '_' after the save index", savedelta.ErrDiscovery, name)
	}
	if digits == "" {
		return 0, fmt.Errorf("%w: %q has an empty save index", savedelta.ErrDiscovery, name)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("%w: %q has a non-numeric save index %q", savedelta.ErrDiscovery, name, digits)
		}
	}
	index, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", savedelta.ErrDiscovery, name, err)
	}
	return index, nil
}

// Resolve assigns order indices from file names and sorts each category.
// Two records of one category with the same index are a conflict.
func Resolve(set *FileSet) (*OrderedFileSet, error) {
	primary, err := order(set.Primary)
	if err != nil {
		return nil, err
	}
	sidecars, err := order(set.Sidecars)
	if err != nil {
		return nil, err
	}
	return &OrderedFileSet{Primary: primary, Sidecars: sidecars}, nil
}

func order(records []Record) ([]Record, error) {
	out := make([]Record, len(records))
	copy(out, records)

	for i := range out {
		index, err := ParseIndex(out[i].Name)
		if err != nil {
			return nil, savedelta.Fail(nil, savedelta.StageOrder, out[i].Name, -1, err)
		}
		out[i].Index = index
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Index != out[b].Index {
			return out[a].Index < out[b].Index
		}
		return out[a].Name < out[b].Name
	})

	for i := 1; i < len(out); i++ {
		if out[i].Index == out[i-1].Index {
			return nil, savedelta.Fail(savedelta.ErrOrderingConflict, savedelta.StageOrder, out[i].Name, int64(out[i].Index),
				fmt.Errorf("%s %q and %q share the index", out[i].Category, out[i-1].Name, out[i].Name))
		}
	}
	return out, nil
}
