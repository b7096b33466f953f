// internal/saveset/order_test.go
package saveset

import (
	"errors"
	"testing"

	"github.com/creativeyann17/go-savedelta/pkg/savedelta"
)

func TestParseIndex(t *testing.T) {
	valid := map[string]uint64{
		"Save1_ABCD_0_4C79646961_Whiterun_000102_20240101.ess": 1,
		"Save012_x.skse": 12,
		"Save4294967296_.ess": 4294967296,
	}
	for name, want := range valid {
		got, err := ParseIndex(name)
		if err != nil {
			t.Errorf("ParseIndex(%q) failed: %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("ParseIndex(%q) = %d, want %d", name, got, want)
		}
	}

	invalid := []string{
		"Autosave1_ABCD.ess",
		"Quicksave0_ABCD.ess",
		"Save_ABCD.ess",
		"Save12.ess",
		"Save1a_ABCD.ess",
		"Save-1_ABCD.ess",
		"Save+1_ABCD.ess",
		"save1_ABCD.ess",
		"Save99999999999999999999_x.ess",
	}
	for _, name := range invalid {
		if _, err := ParseIndex(name); !errors.Is(err, savedelta.ErrDiscovery) {
			t.Errorf("ParseIndex(%q): expected ErrDiscovery, got %v", name, err)
		}
	}
}

func TestResolveOrdersByIndex(t *testing.T) {
	set := &FileSet{
		Primary: []Record{
			{Name: "Save3_c.ess", Category: Primary},
			{Name: "Save1_a.ess", Category: Primary},
			{Name: "Save2_b.ess", Category: Primary},
		},
		Sidecars: []Record{
			{Name: "Save2_b.skse", Category: Sidecar},
			{Name: "Save1_a.skse", Category: Sidecar},
		},
	}

	ordered, err := Resolve(set)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	wantPrimary := []uint64{1, 2, 3}
	for i, rec := range ordered.Primary {
		if rec.Index != wantPrimary[i] {
			t.Errorf("Primary[%d]: expected index %d, got %d", i, wantPrimary[i], rec.Index)
		}
	}
	if ordered.Sidecars[0].Index != 1 || ordered.Sidecars[1].Index != 2 {
		t.Errorf("Sidecars out of order: %+v", ordered.Sidecars)
	}

	all := ordered.All()
	if len(all) != 5 || all[3].Category != Sidecar {
		t.Errorf("All() must list primaries before sidecars: %+v", all)
	}

	if set.Primary[0].Name != "Save3_c.ess" {
		t.Error("Resolve must not reorder its input")
	}
}

func TestResolveConflict(t *testing.T) {
	set := &FileSet{
		Primary: []Record{
			{Name: "Save1_a.ess", Category: Primary},
			{Name: "Save1_b.ess", Category: Primary},
		},
	}

	_, err := Resolve(set)
	if !errors.Is(err, savedelta.ErrOrderingConflict) {
		t.Fatalf("Expected ErrOrderingConflict, got %v", err)
	}

	var se *savedelta.StageError
	if !errors.As(err, &se) || se.Index != 1 {
		t.Errorf("Expected StageError with index 1, got %#v", err)
	}
}

func TestResolveSameIndexAcrossCategories(t *testing.T) {
	set := &FileSet{
		Primary:  []Record{{Name: "Save1_a.ess", Category: Primary}},
		Sidecars: []Record{{Name: "Save1_a.skse", Category: Sidecar}},
	}
	if _, err := Resolve(set); err != nil {
		t.Errorf("Same index in different categories must be allowed: %v", err)
	}
}

func TestResolveRejectsMalformed(t *testing.T) {
	set := &FileSet{Primary: []Record{{Name: "Autosave3_x.ess", Category: Primary}}}
	if _, err := Resolve(set); !errors.Is(err, savedelta.ErrDiscovery) {
		t.Errorf("Expected ErrDiscovery, got %v", err)
	}
}
