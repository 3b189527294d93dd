package pairing

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

func archiveEntry(path, base string) types.FileEntry {
	return types.FileEntry{Path: path, Category: types.CategoryArchive, BaseName: base}
}

func previewEntry(path, base string) types.FileEntry {
	return types.FileEntry{Path: path, Category: types.CategoryPreview, BaseName: base}
}

// singleDirMap builds a map with one directory holding entries in the
// given discovery order.
func singleDirMap(dir string, entries ...types.FileEntry) *types.DirectoryFileMap {
	fm := types.NewDirectoryFileMap()
	fm.AddDir(dir)
	for _, fe := range entries {
		fm.Add(dir, fe)
	}
	return fm
}

// TestParseStrategy covers normalization, defaults, and the
// unrecognized-name fallback.
func TestParseStrategy(t *testing.T) {
	tests := []struct {
		name    string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyFirstMatch, false},
		{"firstmatch", StrategyFirstMatch, false},
		{"FirstMatch", StrategyFirstMatch, false},
		{"first-match", StrategyFirstMatch, false},
		{"first_match", StrategyFirstMatch, false},
		{"allcombinations", StrategyAllCombinations, false},
		{"all-combinations", StrategyAllCombinations, false},
		{"bestmatch", StrategyBestMatch, false},
		{"BEST_MATCH", StrategyBestMatch, false},
		{"bogus", StrategyFirstMatch, true},
	}

	for _, tt := range tests {
		got, err := ParseStrategy(tt.name)
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %q, want %q", tt.name, got, tt.want)
		}
		if tt.wantErr && !errors.Is(err, types.ErrUnknownStrategy) {
			t.Errorf("ParseStrategy(%q) error = %v, want ErrUnknownStrategy", tt.name, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("ParseStrategy(%q) unexpected error: %v", tt.name, err)
		}
	}
}

// TestPairFirstMatch runs the default strategy over a directory with
// one matching pair and two leftovers.
func TestPairFirstMatch(t *testing.T) {
	dir := filepath.Join("/", "proj")
	fm := singleDirMap(dir,
		archiveEntry(filepath.Join(dir, "a.zip"), "a"),
		previewEntry(filepath.Join(dir, "a.jpg"), "a"),
		archiveEntry(filepath.Join(dir, "b.rar"), "b"),
		previewEntry(filepath.Join(dir, "unmatched.png"), "unmatched"),
	)

	pairs, unpaired := NewEngine().Pair(fm, "", StrategyFirstMatch)

	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	p := pairs[0]
	if p.ArchivePath != filepath.Join(dir, "a.zip") || p.PreviewPath != filepath.Join(dir, "a.jpg") {
		t.Errorf("unexpected pair %+v", p)
	}
	if p.BaseName != "a" {
		t.Errorf("pair base name = %q, want %q", p.BaseName, "a")
	}

	wantArchives := []string{filepath.Join(dir, "b.rar")}
	wantPreviews := []string{filepath.Join(dir, "unmatched.png")}
	if !reflect.DeepEqual(unpaired.Archives, wantArchives) {
		t.Errorf("unpaired archives = %v, want %v", unpaired.Archives, wantArchives)
	}
	if !reflect.DeepEqual(unpaired.Previews, wantPreviews) {
		t.Errorf("unpaired previews = %v, want %v", unpaired.Previews, wantPreviews)
	}
}

// TestPairFirstMatchOrder verifies earliest-first consumption when a
// base name repeats.
func TestPairFirstMatchOrder(t *testing.T) {
	dir := "/models"
	fm := singleDirMap(dir,
		archiveEntry("/models/kit.zip", "kit"),
		archiveEntry("/models/kit.rar", "kit"),
		previewEntry("/models/kit.jpg", "kit"),
	)

	pairs, unpaired := NewEngine().Pair(fm, "", StrategyFirstMatch)

	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].ArchivePath != "/models/kit.zip" {
		t.Errorf("paired archive = %q, want the earliest (/models/kit.zip)", pairs[0].ArchivePath)
	}
	if !reflect.DeepEqual(unpaired.Archives, []string{"/models/kit.rar"}) {
		t.Errorf("unpaired archives = %v, want [/models/kit.rar]", unpaired.Archives)
	}
}

// TestPairAllCombinations verifies the full cross product per base
// name.
func TestPairAllCombinations(t *testing.T) {
	dir := "/proj"
	fm := singleDirMap(dir,
		archiveEntry("/proj/kit.zip", "kit"),
		archiveEntry("/proj/kit.rar", "kit"),
		previewEntry("/proj/kit.jpg", "kit"),
		previewEntry("/proj/kit.png", "kit"),
		archiveEntry("/proj/solo.zip", "solo"),
	)

	pairs, unpaired := NewEngine().Pair(fm, "", StrategyAllCombinations)

	if len(pairs) != 4 {
		t.Fatalf("expected 4 pairs (2x2), got %d", len(pairs))
	}
	want := []types.FilePair{
		{ArchivePath: "/proj/kit.zip", PreviewPath: "/proj/kit.jpg", BaseName: "kit"},
		{ArchivePath: "/proj/kit.zip", PreviewPath: "/proj/kit.png", BaseName: "kit"},
		{ArchivePath: "/proj/kit.rar", PreviewPath: "/proj/kit.jpg", BaseName: "kit"},
		{ArchivePath: "/proj/kit.rar", PreviewPath: "/proj/kit.png", BaseName: "kit"},
	}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("pairs = %v, want %v", pairs, want)
	}
	if !reflect.DeepEqual(unpaired.Archives, []string{"/proj/solo.zip"}) {
		t.Errorf("unpaired archives = %v, want [/proj/solo.zip]", unpaired.Archives)
	}
	if len(unpaired.Previews) != 0 {
		t.Errorf("unpaired previews = %v, want none", unpaired.Previews)
	}
}

// TestPairBestMatchExact verifies exact base names beat prefix
// relatives.
func TestPairBestMatchExact(t *testing.T) {
	dir := "/kits"
	fm := singleDirMap(dir,
		archiveEntry("/kits/model_v1.zip", "model_v1"),
		previewEntry("/kits/model_v2.jpg", "model_v2"),
		previewEntry("/kits/model_v1.jpg", "model_v1"),
	)

	pairs, unpaired := NewEngine().Pair(fm, "", StrategyBestMatch)

	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].PreviewPath != "/kits/model_v1.jpg" {
		t.Errorf("paired preview = %q, want exact match /kits/model_v1.jpg", pairs[0].PreviewPath)
	}
	if !reflect.DeepEqual(unpaired.Previews, []string{"/kits/model_v2.jpg"}) {
		t.Errorf("unpaired previews = %v, want [/kits/model_v2.jpg]", unpaired.Previews)
	}
}

// TestPairBestMatchPrefix verifies the longest-common-prefix fallback
// pairs names first-match would leave unpaired.
func TestPairBestMatchPrefix(t *testing.T) {
	dir := "/kits"
	fm := singleDirMap(dir,
		archiveEntry("/kits/dragon_v2.zip", "dragon_v2"),
		previewEntry("/kits/dragon.jpg", "dragon"),
	)

	pairs, unpaired := NewEngine().Pair(fm, "", StrategyBestMatch)

	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	p := pairs[0]
	if p.ArchivePath != "/kits/dragon_v2.zip" || p.PreviewPath != "/kits/dragon.jpg" {
		t.Errorf("unexpected pair %+v", p)
	}
	if p.BaseName != "dragon_v2" {
		t.Errorf("pair base name = %q, want the archive's (dragon_v2)", p.BaseName)
	}
	if !unpaired.Empty() {
		t.Errorf("expected nothing unpaired, got %+v", unpaired)
	}
}

// TestPairBestMatchNoSharedPrefix verifies names sharing no leading
// character stay unpaired.
func TestPairBestMatchNoSharedPrefix(t *testing.T) {
	dir := "/kits"
	fm := singleDirMap(dir,
		archiveEntry("/kits/zebra.zip", "zebra"),
		previewEntry("/kits/aardvark.jpg", "aardvark"),
	)

	pairs, unpaired := NewEngine().Pair(fm, "", StrategyBestMatch)

	if len(pairs) != 0 {
		t.Fatalf("expected no pairs, got %v", pairs)
	}
	if !reflect.DeepEqual(unpaired.Archives, []string{"/kits/zebra.zip"}) {
		t.Errorf("unpaired archives = %v", unpaired.Archives)
	}
	if !reflect.DeepEqual(unpaired.Previews, []string{"/kits/aardvark.jpg"}) {
		t.Errorf("unpaired previews = %v", unpaired.Previews)
	}
}

// TestPairPerDirectoryScoping verifies matches never cross directory
// boundaries without a base directory.
func TestPairPerDirectoryScoping(t *testing.T) {
	fm := types.NewDirectoryFileMap()
	fm.AddDir("/proj/archives")
	fm.Add("/proj/archives", archiveEntry("/proj/archives/kit.zip", "kit"))
	fm.AddDir("/proj/previews")
	fm.Add("/proj/previews", previewEntry("/proj/previews/kit.jpg", "kit"))

	pairs, unpaired := NewEngine().Pair(fm, "", StrategyFirstMatch)

	if len(pairs) != 0 {
		t.Fatalf("expected no cross-directory pairs, got %v", pairs)
	}
	if len(unpaired.Archives) != 1 || len(unpaired.Previews) != 1 {
		t.Errorf("unpaired = %+v, want one archive and one preview", unpaired)
	}
}

// TestPairBaseDirMerge verifies a base directory merges its subtree
// into one working set.
func TestPairBaseDirMerge(t *testing.T) {
	fm := types.NewDirectoryFileMap()
	fm.AddDir("/proj/archives")
	fm.Add("/proj/archives", archiveEntry("/proj/archives/kit.zip", "kit"))
	fm.AddDir("/proj/previews")
	fm.Add("/proj/previews", previewEntry("/proj/previews/kit.jpg", "kit"))
	fm.AddDir("/other")
	fm.Add("/other", archiveEntry("/other/kit.rar", "kit"))

	pairs, unpaired := NewEngine().Pair(fm, "/proj", StrategyFirstMatch)

	if len(pairs) != 1 {
		t.Fatalf("expected 1 merged pair, got %d", len(pairs))
	}
	p := pairs[0]
	if p.ArchivePath != "/proj/archives/kit.zip" || p.PreviewPath != "/proj/previews/kit.jpg" {
		t.Errorf("unexpected pair %+v", p)
	}

	// The directory outside the base keeps its own working set.
	if !reflect.DeepEqual(unpaired.Archives, []string{"/other/kit.rar"}) {
		t.Errorf("unpaired archives = %v, want [/other/kit.rar]", unpaired.Archives)
	}
}

// TestPairUnknownStrategyFallsBack verifies an unrecognized strategy
// behaves exactly like the default.
func TestPairUnknownStrategyFallsBack(t *testing.T) {
	build := func() *types.DirectoryFileMap {
		return singleDirMap("/proj",
			archiveEntry("/proj/a.zip", "a"),
			previewEntry("/proj/a.jpg", "a"),
			archiveEntry("/proj/b.rar", "b"),
		)
	}

	gotPairs, gotUnpaired := NewEngine().Pair(build(), "", Strategy("fuzzy"))
	wantPairs, wantUnpaired := NewEngine().Pair(build(), "", StrategyFirstMatch)

	if !reflect.DeepEqual(gotPairs, wantPairs) {
		t.Errorf("pairs = %v, want %v", gotPairs, wantPairs)
	}
	if !reflect.DeepEqual(gotUnpaired, wantUnpaired) {
		t.Errorf("unpaired = %+v, want %+v", gotUnpaired, wantUnpaired)
	}
}

// TestPairEmptyInput verifies nil and empty maps yield empty results.
func TestPairEmptyInput(t *testing.T) {
	engine := NewEngine()

	pairs, unpaired := engine.Pair(nil, "", StrategyFirstMatch)
	if len(pairs) != 0 || !unpaired.Empty() {
		t.Errorf("nil map: pairs = %v, unpaired = %+v", pairs, unpaired)
	}

	pairs, unpaired = engine.Pair(types.NewDirectoryFileMap(), "", StrategyBestMatch)
	if len(pairs) != 0 || !unpaired.Empty() {
		t.Errorf("empty map: pairs = %v, unpaired = %+v", pairs, unpaired)
	}
}

// TestPairStrategyAgreement verifies all strategies coincide when each
// base name appears at most once per category.
func TestPairStrategyAgreement(t *testing.T) {
	build := func() *types.DirectoryFileMap {
		return singleDirMap("/proj",
			archiveEntry("/proj/alpha.zip", "alpha"),
			previewEntry("/proj/alpha.jpg", "alpha"),
			archiveEntry("/proj/beta.rar", "beta"),
			previewEntry("/proj/beta.png", "beta"),
			previewEntry("/proj/orphan.gif", "orphan"),
		)
	}

	engine := NewEngine()
	basePairs, baseUnpaired := engine.Pair(build(), "", StrategyFirstMatch)

	for _, strategy := range []Strategy{StrategyAllCombinations, StrategyBestMatch} {
		pairs, unpaired := engine.Pair(build(), "", strategy)
		if !reflect.DeepEqual(pairs, basePairs) {
			t.Errorf("%s pairs = %v, want %v", strategy, pairs, basePairs)
		}
		if !reflect.DeepEqual(unpaired, baseUnpaired) {
			t.Errorf("%s unpaired = %+v, want %+v", strategy, unpaired, baseUnpaired)
		}
	}
}

// TestPairDeterministic verifies repeated runs over the same input
// yield identical results.
func TestPairDeterministic(t *testing.T) {
	build := func() *types.DirectoryFileMap {
		fm := types.NewDirectoryFileMap()
		fm.AddDir("/a")
		fm.Add("/a", archiveEntry("/a/kit.zip", "kit"))
		fm.Add("/a", previewEntry("/a/kit_preview.jpg", "kit"))
		fm.Add("/a", archiveEntry("/a/pod.7z", "pod"))
		fm.AddDir("/b")
		fm.Add("/b", previewEntry("/b/pod.png", "pod"))
		return fm
	}

	engine := NewEngine()
	for _, strategy := range []Strategy{StrategyFirstMatch, StrategyAllCombinations, StrategyBestMatch} {
		firstPairs, firstUnpaired := engine.Pair(build(), "", strategy)
		for i := 0; i < 3; i++ {
			pairs, unpaired := engine.Pair(build(), "", strategy)
			if !reflect.DeepEqual(pairs, firstPairs) {
				t.Fatalf("%s run %d pairs diverged: %v vs %v", strategy, i, pairs, firstPairs)
			}
			if !reflect.DeepEqual(unpaired, firstUnpaired) {
				t.Fatalf("%s run %d unpaired diverged: %+v vs %+v", strategy, i, unpaired, firstUnpaired)
			}
		}
	}
}

// TestPairPartition verifies every classified file lands in exactly
// one output bucket for every strategy.
func TestPairPartition(t *testing.T) {
	build := func() *types.DirectoryFileMap {
		return singleDirMap("/proj",
			archiveEntry("/proj/kit.zip", "kit"),
			archiveEntry("/proj/kit.rar", "kit"),
			previewEntry("/proj/kit.jpg", "kit"),
			archiveEntry("/proj/solo.7z", "solo"),
			previewEntry("/proj/free.png", "free"),
		)
	}
	allPaths := []string{
		"/proj/kit.zip", "/proj/kit.rar", "/proj/kit.jpg",
		"/proj/solo.7z", "/proj/free.png",
	}

	for _, strategy := range []Strategy{StrategyFirstMatch, StrategyBestMatch} {
		pairs, unpaired := NewEngine().Pair(build(), "", strategy)

		seen := make(map[string]int)
		for _, p := range pairs {
			seen[p.ArchivePath]++
			seen[p.PreviewPath]++
		}
		for _, a := range unpaired.Archives {
			seen[a]++
		}
		for _, p := range unpaired.Previews {
			seen[p]++
		}

		for _, path := range allPaths {
			if seen[path] != 1 {
				t.Errorf("%s: %s appeared %d times, want exactly once", strategy, path, seen[path])
			}
		}
		if len(seen) != len(allPaths) {
			t.Errorf("%s: output mentioned %d paths, want %d", strategy, len(seen), len(allPaths))
		}
	}
}
