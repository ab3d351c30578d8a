package graph

import "fmt"

// ExportNode is one node in the visualization view. The ID is
// namespaced by entity type so a Category and a Keyword sharing a
// literal name never collide.
type ExportNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Group string `json:"group"`
}

// ExportEdge references the namespaced node IDs.
type ExportEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Export is the node/edge view consumed by visualization frontends.
type Export struct {
	Nodes []ExportNode `json:"nodes"`
	Edges []ExportEdge `json:"edges"`
}

// NamespacedID builds the collision-safe identifier for a node.
func NamespacedID(label, key string) string {
	return label + ":" + key
}

// Export reads the whole graph and produces the namespaced node and
// edge lists. The returned collisions slice lists any duplicate node
// IDs found in the final list; a collision is diagnostic only and does
// not fail the export.
func (s *Store) Export() (*Export, []string, error) {
	export := &Export{
		Nodes: []ExportNode{},
		Edges: []ExportEdge{},
	}

	groups := []struct {
		label string
		group string
	}{
		{LabelLink, "link"},
		{LabelCategory, "category"},
		{LabelKeyword, "keyword"},
	}

	for _, g := range groups {
		nodes, err := s.ScanNodes(g.label)
		if err != nil {
			return nil, nil, fmt.Errorf("export: %w", err)
		}
		for _, n := range nodes {
			display := n.Key
			if g.label == LabelLink {
				if title := n.Attrs[AttrTitle]; title != "" {
					display = title
				}
			}
			export.Nodes = append(export.Nodes, ExportNode{
				ID:    NamespacedID(n.Label, n.Key),
				Label: display,
				Group: g.group,
			})
		}
	}

	for _, rel := range []string{RelBelongsTo, RelHasKeyword} {
		edges, err := s.ScanEdges(rel)
		if err != nil {
			return nil, nil, fmt.Errorf("export: %w", err)
		}
		for _, e := range edges {
			export.Edges = append(export.Edges, ExportEdge{
				From: NamespacedID(e.FromLabel, e.FromKey),
				To:   NamespacedID(e.ToLabel, e.ToKey),
			})
		}
	}

	return export, duplicateIDs(export.Nodes), nil
}

// duplicateIDs reports IDs that appear more than once in the node
// list. With namespaced IDs this should never trigger; it exists as an
// invariant check on the export itself.
func duplicateIDs(nodes []ExportNode) []string {
	seen := make(map[string]int, len(nodes))
	var dups []string
	for _, n := range nodes {
		seen[n.ID]++
		if seen[n.ID] == 2 {
			dups = append(dups, n.ID)
		}
	}
	return dups
}
