package billiard

import "sort"

// touchingGraph is an undirected graph over ball indices
type touchingGraph struct {
	adjacency map[int][]int
}

func newTouchingGraph() *touchingGraph {
	return &touchingGraph{adjacency: make(map[int][]int)}
}

func (g *touchingGraph) addEdge(a, b int) {
	if g.hasEdge(a, b) {
		return
	}
	g.adjacency[a] = append(g.adjacency[a], b)
	g.adjacency[b] = append(g.adjacency[b], a)
}

func (g *touchingGraph) hasEdge(a, b int) bool {
	for _, n := range g.adjacency[a] {
		if n == b {
			return true
		}
	}
	return false
}

// connectedComponent returns the vertices reachable from start, start included, in ascending order
func (g *touchingGraph) connectedComponent(start int) []int {
	visited := map[int]bool{start: true}
	queue := []int{start}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, n := range g.adjacency[v] {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}

	component := make([]int, 0, len(visited))
	for v := range visited {
		component = append(component, v)
	}
	sort.Ints(component)

	return component
}
