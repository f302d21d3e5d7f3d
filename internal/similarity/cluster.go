package similarity

import (
	"fmt"
	"sort"

	"filedupfinder/internal/models"
)

// pairScorer abstracts pairwise scoring for the clustering passes.
type pairScorer interface {
	Score(a, b *models.FileInfo) float64
}

// FindSimilarFiles partitions files into duplicate groups.
//
// Exact-hash grouping always runs first. At a threshold of 1.0 its output
// is the whole result; below 1.0 the hash-unique residue is clustered by
// the configured strategy and both group sets are merged. No file appears
// in more than one group.
func (d *Detector) FindSimilarFiles(files []*models.FileInfo) map[string][]*models.FileInfo {
	exact, residue := groupByHash(files)
	if d.cfg.Threshold >= 1.0 {
		return exact
	}

	var near map[string][]*models.FileInfo
	switch d.cfg.Strategy {
	case StrategyUnionFind:
		near = unionFindClusters(residue, d, d.cfg.Threshold)
	default:
		near = anchorClusters(residue, d, d.cfg.Threshold)
	}

	result := make(map[string][]*models.FileInfo, len(exact)+len(near))
	for key, group := range exact {
		result[key] = group
	}
	for key, group := range near {
		result[key] = group
	}
	return result
}

// groupByHash partitions files by content fingerprint. Entries with at
// least two members become groups keyed by hash; singletons form the
// residue. Unreadable files get no fingerprint and no group membership
// but stay in the residue for similarity scoring.
func groupByHash(files []*models.FileInfo) (map[string][]*models.FileInfo, []*models.FileInfo) {
	byHash := make(map[string][]*models.FileInfo)
	var unhashable []*models.FileInfo

	for _, f := range files {
		h := fingerprint(f)
		if h == "" {
			unhashable = append(unhashable, f)
			continue
		}
		byHash[h] = append(byHash[h], f)
	}

	groups := make(map[string][]*models.FileInfo)
	var residue []*models.FileInfo
	for _, f := range files {
		h := fingerprint(f)
		if h == "" {
			continue
		}
		if members := byHash[h]; len(members) >= 2 {
			if _, done := groups[h]; !done {
				groups[h] = members
			}
		} else {
			residue = append(residue, f)
		}
	}
	residue = append(residue, unhashable...)

	return groups, residue
}

// anchorClusters is the default greedy clustering pass. The first
// unassigned file anchors a group, and every later unassigned file
// clearing the threshold against the anchor joins it. Membership is
// decided solely by similarity to the anchor, so A-B and A-C matches pull
// B and C into one group even when B and C are dissimilar.
func anchorClusters(files []*models.FileInfo, scorer pairScorer, threshold float64) map[string][]*models.FileInfo {
	groups := make(map[string][]*models.FileInfo)
	assigned := make(map[string]bool, len(files))

	for i, anchor := range files {
		if assigned[anchor.Path] {
			continue
		}

		group := []*models.FileInfo{anchor}
		assigned[anchor.Path] = true

		for _, candidate := range files[i+1:] {
			if assigned[candidate.Path] {
				continue
			}
			if scorer.Score(anchor, candidate) >= threshold {
				group = append(group, candidate)
				assigned[candidate.Path] = true
			}
		}

		if len(group) >= 2 {
			groups[fmt.Sprintf("group_%d", i)] = group
		}
	}

	return groups
}

// BuildGroups converts a group map into DuplicateGroups with keep/remove
// selection, sorted by key for consistent output.
func BuildGroups(groupMap map[string][]*models.FileInfo) []*models.DuplicateGroup {
	var groups []*models.DuplicateGroup

	for key, files := range groupMap {
		if len(files) < 2 {
			continue
		}

		group := &models.DuplicateGroup{
			Key:   key,
			Files: files,
		}
		selectKeepAndRemove(group)
		groups = append(groups, group)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})

	return groups
}

// selectKeepAndRemove determines which file to keep and which to remove
func selectKeepAndRemove(group *models.DuplicateGroup) {
	if len(group.Files) == 0 {
		return
	}

	// Sort by score (descending), then by file size (descending),
	// then by mod time (descending), then by path (ascending)
	sorted := make([]*models.FileInfo, len(group.Files))
	copy(sorted, group.Files)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]

		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.FileSize != b.FileSize {
			return a.FileSize > b.FileSize
		}
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
		return a.Path < b.Path
	})

	group.Keep = sorted[0]
	group.Remove = sorted[1:]

	for _, f := range group.Files {
		f.GroupKey = group.Key
	}
}
