package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/waypoint/internal/model"
)

// CycleWarning describes a prerequisite cycle. A module in a cycle can
// never be unlocked under enforced prerequisites.
type CycleWarning struct {
	Path    []string `json:"path"` // ["res-002", "res-003", "res-002"]
	Message string   `json:"message"`
}

// AnalyzePrerequisites finds prerequisite cycles among modules.
// Self-references are reported by validate and skipped here.
//
// The algorithm builds a module -> prerequisite graph and runs Tarjan's
// strongly connected components; every component with more than one
// member is a cycle. Output is sorted so validation messages are stable.
func AnalyzePrerequisites(modules map[string]model.Module) []CycleWarning {
	graph := make(dependencyGraph, len(modules))
	for id, m := range modules {
		graph[id] = []string{}
		for _, p := range m.Prerequisites {
			if _, ok := modules[p]; ok && p != id {
				graph[id] = append(graph[id], p)
			}
		}
	}

	var warnings []CycleWarning
	for _, scc := range tarjanSCC(graph) {
		if len(scc) < 2 {
			continue
		}
		slices.Sort(scc)
		path := reconstructCyclePath(scc, graph)
		warnings = append(warnings, CycleWarning{
			Path:    path,
			Message: fmt.Sprintf("prerequisite cycle: %s", strings.Join(path, " → ")),
		})
	}
	slices.SortFunc(warnings, func(a, b CycleWarning) int { return strings.Compare(a.Path[0], b.Path[0]) })
	return warnings
}

// dependencyGraph maps module ID -> prerequisite module IDs.
type dependencyGraph map[string][]string

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
func tarjanSCC(graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// reconstructCyclePath walks edges inside an SCC from its first member
// until it returns to the start.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	inSCC := make(map[string]bool, len(scc))
	for _, node := range scc {
		inSCC[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if inSCC[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
