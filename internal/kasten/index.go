package kasten

import "sort"

// linkIndex holds both directions of the link graph plus note titles for
// graph queries. Invariant: reverse is exactly the transposition of forward,
// as of the last full scan plus every patch since.
type linkIndex struct {
	built   bool
	forward map[string][]string
	reverse map[string]map[string]struct{}
	titles  map[string]string
}

func newLinkIndex() *linkIndex {
	return &linkIndex{
		forward: make(map[string][]string),
		reverse: make(map[string]map[string]struct{}),
		titles:  make(map[string]string),
	}
}

// patch replaces one note's contribution: its old outgoing edges are
// retracted and the new set installed, keeping reverse consistent.
func (x *linkIndex) patch(id, title string, links []string) {
	x.retract(id)
	x.forward[id] = links
	x.titles[id] = title
	for _, target := range links {
		set, ok := x.reverse[target]
		if !ok {
			set = make(map[string]struct{})
			x.reverse[target] = set
		}
		set[id] = struct{}{}
	}
}

// remove drops a note from the index entirely.
func (x *linkIndex) remove(id string) {
	x.retract(id)
	delete(x.forward, id)
	delete(x.titles, id)
}

func (x *linkIndex) retract(id string) {
	for _, target := range x.forward[id] {
		if set, ok := x.reverse[target]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(x.reverse, target)
			}
		}
	}
}

// backlinks returns the sorted identities linking to target.
func (x *linkIndex) backlinks(target string) []string {
	set := x.reverse[target]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// graph returns every indexed note and edge, sorted for stable output.
func (x *linkIndex) graph() ([]GraphNode, []GraphEdge, error) {
	nodes := make([]GraphNode, 0, len(x.forward))
	for id := range x.forward {
		nodes = append(nodes, GraphNode{ID: id, Title: x.titles[id]})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	var edges []GraphEdge
	for source, targets := range x.forward {
		for _, target := range targets {
			edges = append(edges, GraphEdge{Source: source, Target: target})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return nodes, edges, nil
}
