package similarity

import (
	"fmt"

	"filedupfinder/internal/models"
)

// unionFindClusters is the opt-in alternative clustering pass: every pair
// clearing the threshold is unioned, and connected components of size >= 2
// become groups. Unlike the anchor pass this yields true equivalence
// classes over the "similar" relation's transitive closure.
func unionFindClusters(files []*models.FileInfo, scorer pairScorer, threshold float64) map[string][]*models.FileInfo {
	n := len(files)
	if n < 2 {
		return map[string][]*models.FileInfo{}
	}

	uf := newUnionFind(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if scorer.Score(files[i], files[j]) >= threshold {
				uf.union(i, j)
			}
		}
	}

	components := make(map[int][]*models.FileInfo)
	for i, f := range files {
		root := uf.find(i)
		components[root] = append(components[root], f)
	}

	groups := make(map[string][]*models.FileInfo)
	for root, members := range components {
		if len(members) >= 2 {
			groups[fmt.Sprintf("group_%d", root)] = members
		}
	}
	return groups
}

// Union-Find data structure for efficient grouping
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	rank := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent, rank: rank}
}

func (uf *unionFind) find(x int) int {
	if uf.parent[x] != x {
		uf.parent[x] = uf.find(uf.parent[x]) // Path compression
	}
	return uf.parent[x]
}

func (uf *unionFind) union(x, y int) {
	px, py := uf.find(x), uf.find(y)
	if px == py {
		return
	}
	// Union by rank
	if uf.rank[px] < uf.rank[py] {
		px, py = py, px
	}
	uf.parent[py] = px
	if uf.rank[px] == uf.rank[py] {
		uf.rank[px]++
	}
}
