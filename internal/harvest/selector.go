package harvest

import "github.com/handiism/yt-harvester/internal/model"

// SelectQuota returns the first quota candidates, or all of them when
// there are fewer. The input is not modified.
func SelectQuota(candidates []model.VideoCandidate, quota int) []model.VideoCandidate {
	if quota < 0 {
		quota = 0
	}
	n := min(quota, len(candidates))
	selected := make([]model.VideoCandidate, n)
	copy(selected, candidates[:n])
	return selected
}

// Accumulate flattens per-artist selections into work items, artist by
// artist and in selection order within each artist.
func Accumulate(groups [][]model.VideoCandidate, mode model.Mode, destDir string) []model.WorkItem {
	total := 0
	for _, g := range groups {
		total += len(g)
	}

	items := make([]model.WorkItem, 0, total)
	for _, g := range groups {
		for _, c := range g {
			items = append(items, model.NewBatchWorkItem(c.ID, mode, destDir))
		}
	}
	return items
}
