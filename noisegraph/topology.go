package noisegraph

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/katalvlaran/lvlath/bfs"
	lvcore "github.com/katalvlaran/lvlath/core"
	"github.com/qpatch-dev/smartlayout/core"
	"go.uber.org/zap"
)

// couplingGraph maps the topology onto an unweighted undirected lvlath
// graph. Gate orientation is irrelevant for connectivity, so both a native
// coupling and its reverse collapse onto one undirected edge.
func couplingGraph(t core.Topology) (*lvcore.Graph, error) {
	g := lvcore.NewGraph()
	for q := 0; q < t.NumQubits; q++ {
		if err := g.AddVertex(strconv.Itoa(q)); err != nil {
			return nil, err
		}
	}
	for _, c := range t.Couplings {
		from, to := strconv.Itoa(c.Control), strconv.Itoa(c.Target)
		if g.HasEdge(from, to) || g.HasEdge(to, from) {
			continue
		}
		if _, err := g.AddEdge(from, to, 0); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Components returns the connected components of the coupling topology,
// each sorted ascending, ordered by their lowest qubit.
func Components(t core.Topology) ([][]int, error) {
	g, err := couplingGraph(t)
	if err != nil {
		return nil, err
	}
	visited := make(map[int]bool, t.NumQubits)
	var components [][]int
	for q := 0; q < t.NumQubits; q++ {
		if visited[q] {
			continue
		}
		res, err := bfs.BFS(g, strconv.Itoa(q))
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to walk coupling graph from qubit %d/reason:%s", q, err))
			return nil, err
		}
		component := make([]int, 0, len(res.Order))
		for _, id := range res.Order {
			n, err := strconv.Atoi(id)
			if err != nil {
				return nil, err
			}
			visited[n] = true
			component = append(component, n)
		}
		sort.Ints(component)
		components = append(components, component)
	}
	return components, nil
}

// LargestComponentSize is used for feasibility checks: a k-qubit patch
// exists iff k is at most this size.
func LargestComponentSize(t core.Topology) (int, error) {
	components, err := Components(t)
	if err != nil {
		return 0, err
	}
	largest := 0
	for _, c := range components {
		if len(c) > largest {
			largest = len(c)
		}
	}
	return largest, nil
}
