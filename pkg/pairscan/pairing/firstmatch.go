package pairing

import (
	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

// firstMatch pairs in discovery order: the first unconsumed preview
// for a base name joins the first unconsumed archive of that base
// name, whichever arrives later closing the pair. Linear in the
// working set; ties resolve by position.
func firstMatch(entries []types.FileEntry) ([]types.FilePair, []string, []string) {
	var pairs []types.FilePair
	consumed := make([]bool, len(entries))

	// FIFO queues of unconsumed entry positions per base name.
	pendingArchives := make(map[string][]int)
	pendingPreviews := make(map[string][]int)

	for i, fe := range entries {
		switch fe.Category {
		case types.CategoryArchive:
			if queue := pendingPreviews[fe.BaseName]; len(queue) > 0 {
				j := queue[0]
				pendingPreviews[fe.BaseName] = queue[1:]
				consumed[i], consumed[j] = true, true
				pairs = append(pairs, types.FilePair{
					ArchivePath: fe.Path,
					PreviewPath: entries[j].Path,
					BaseName:    fe.BaseName,
				})
			} else {
				pendingArchives[fe.BaseName] = append(pendingArchives[fe.BaseName], i)
			}

		case types.CategoryPreview:
			if queue := pendingArchives[fe.BaseName]; len(queue) > 0 {
				j := queue[0]
				pendingArchives[fe.BaseName] = queue[1:]
				consumed[i], consumed[j] = true, true
				pairs = append(pairs, types.FilePair{
					ArchivePath: entries[j].Path,
					PreviewPath: fe.Path,
					BaseName:    fe.BaseName,
				})
			} else {
				pendingPreviews[fe.BaseName] = append(pendingPreviews[fe.BaseName], i)
			}
		}
	}

	archives, previews := collectUnpaired(entries, consumed)
	return pairs, archives, previews
}
