package pairing

import (
	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

// allCombinations emits one pair for every archive/preview combination
// sharing a base name. Output can therefore exceed the input count
// when a base name has multiple variants on either side. Pair order
// follows the first appearance of each base name, archives outer,
// previews inner.
func allCombinations(entries []types.FileEntry) ([]types.FilePair, []string, []string) {
	archivesByBase := make(map[string][]int)
	previewsByBase := make(map[string][]int)
	var baseOrder []string

	for i, fe := range entries {
		switch fe.Category {
		case types.CategoryArchive:
			if len(archivesByBase[fe.BaseName])+len(previewsByBase[fe.BaseName]) == 0 {
				baseOrder = append(baseOrder, fe.BaseName)
			}
			archivesByBase[fe.BaseName] = append(archivesByBase[fe.BaseName], i)
		case types.CategoryPreview:
			if len(archivesByBase[fe.BaseName])+len(previewsByBase[fe.BaseName]) == 0 {
				baseOrder = append(baseOrder, fe.BaseName)
			}
			previewsByBase[fe.BaseName] = append(previewsByBase[fe.BaseName], i)
		}
	}

	var pairs []types.FilePair
	consumed := make([]bool, len(entries))

	for _, base := range baseOrder {
		archives, previews := archivesByBase[base], previewsByBase[base]
		if len(archives) == 0 || len(previews) == 0 {
			continue
		}
		for _, ai := range archives {
			consumed[ai] = true
			for _, pi := range previews {
				consumed[pi] = true
				pairs = append(pairs, types.FilePair{
					ArchivePath: entries[ai].Path,
					PreviewPath: entries[pi].Path,
					BaseName:    base,
				})
			}
		}
	}

	archives, previews := collectUnpaired(entries, consumed)
	return pairs, archives, previews
}
