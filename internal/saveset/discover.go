// internal/saveset/discover.go
package saveset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

// IgnoreFileName is picked up from the save directory when present
const IgnoreFileName = ".savedeltaignore"

// DiscoverOptions tunes directory classification
type DiscoverOptions struct {
	// IgnoreFile holds gitignore-style patterns of files to leave out.
	// Empty means IgnoreFileName inside the directory, if it exists.
	IgnoreFile string
}

// Discover lists dir and classifies every entry by its name. It does not
// read file contents.
func Discover(dir string, opts DiscoverOptions) (*FileSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, savedelta.Fail(savedelta.ErrDiscovery, savedelta.StageDiscover, dir, -1, err)
	}

	matcher, err := loadIgnore(dir, opts.IgnoreFile)
	if err != nil {
		return nil, savedelta.Fail(savedelta.ErrDiscovery, savedelta.StageDiscover, opts.IgnoreFile, -1, err)
	}

	set := &FileSet{Dir: dir}
	var sidecars []Record
	stems := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == IgnoreFileName {
			continue
		}

		rec := Record{Name: entry.Name(), Path: filepath.Join(dir, entry.Name())}
		if !entry.Type().IsRegular() {
			set.exclude(rec, "not a regular file")
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, savedelta.Fail(savedelta.ErrDiscovery, savedelta.StageDiscover, rec.Name, -1, err)
		}
		rec.Size = info.Size()
		rec.ModTime = info.ModTime()

		if matcher != nil && matcher.MatchesPath(rec.Name) {
			set.exclude(rec, "ignore pattern")
			continue
		}

		ext := strings.ToLower(filepath.Ext(rec.Name))
		if ext != PrimaryExt && ext != SidecarExt {
			set.exclude(rec, "not a save file")
			continue
		}

		index, err := ParseIndex(rec.Name)
		if err != nil {
			// autosaves, quicksaves and third-party slot names
			set.exclude(rec, "not a manual save")
			continue
		}
		rec.Index = index

		if ext == PrimaryExt {
			rec.Category = Primary
			set.Primary = append(set.Primary, rec)
			stems[stem(rec.Name)] = true
		} else {
			rec.Category = Sidecar
			sidecars = append(sidecars, rec)
		}
	}

	for _, rec := range sidecars {
		if !stems[stem(rec.Name)] {
			set.exclude(rec, "no matching save")
			continue
		}
		set.Sidecars = append(set.Sidecars, rec)
	}

	if len(set.Primary) == 0 {
		return nil, savedelta.Fail(savedelta.ErrDiscovery, savedelta.StageDiscover, dir, -1,
			fmt.Errorf("no primary saves (Save<N>_*%s) found", PrimaryExt))
	}

	sort.Slice(set.Excluded, func(i, j int) bool { return set.Excluded[i].Name < set.Excluded[j].Name })
	return set, nil
}

// DiscoverOrdered runs Discover then Resolve
func DiscoverOrdered(dir string, opts DiscoverOptions) (*FileSet, *OrderedFileSet, error) {
	set, err := Discover(dir, opts)
	if err != nil {
		return nil, nil, err
	}
	ordered, err := Resolve(set)
	if err != nil {
		return set, nil, err
	}
	return set, ordered, nil
}

func (s *FileSet) exclude(rec Record, reason string) {
	rec.Category = Excluded
	rec.Reason = reason
	s.Excluded = append(s.Excluded, rec)
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func loadIgnore(dir, path string) (*ignore.GitIgnore, error) {
	if path == "" {
		path = filepath.Join(dir, IgnoreFileName)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
	}
	matcher, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("compile ignore file: %w", err)
	}
	return matcher, nil
}
