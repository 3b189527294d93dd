package pairing

import (
	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

// bestMatch builds a trie over the preview base names of the working
// set, then resolves each archive in discovery order against it. Each
// preview is consumed by at most one archive. Lookup cost is bounded
// by the base name length plus the sorted-key descent, not by the
// preview count.
func bestMatch(entries []types.FileEntry) ([]types.FilePair, []string, []string) {
	tr := newTrie()
	for i, fe := range entries {
		if fe.Category == types.CategoryPreview {
			tr.insert(fe.BaseName, i)
		}
	}

	var pairs []types.FilePair
	consumed := make([]bool, len(entries))

	for i, fe := range entries {
		if fe.Category != types.CategoryArchive {
			continue
		}
		j, ok := tr.takeBest(fe.BaseName)
		if !ok {
			continue
		}
		consumed[i], consumed[j] = true, true
		pairs = append(pairs, types.FilePair{
			ArchivePath: fe.Path,
			PreviewPath: entries[j].Path,
			BaseName:    fe.BaseName,
		})
	}

	archives, previews := collectUnpaired(entries, consumed)
	return pairs, archives, previews
}
