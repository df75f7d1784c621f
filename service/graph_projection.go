package service

import "lawgraph-backend/models"

// labelRunes caps display labels so the frontend renderer stays legible.
// Node ids and Data always carry the full values.
const labelRunes = 30

// buildGraphView flattens a section neighborhood into the node/edge structure
// the frontend visualizer consumes. Nodes are deduplicated first-seen by id;
// edges to already-seen nodes are still emitted. Outcome edges start at the
// action that produced them and are omitted when that action is unknown.
func buildGraphView(sectionID string, n *models.SectionNeighborhood) models.GraphView {
	view := models.GraphView{
		Nodes: make([]models.GraphNode, 0),
		Edges: make([]models.GraphEdge, 0),
		Root:  sectionID,
	}
	seen := make(map[string]bool)

	addNode := func(node models.GraphNode) {
		if seen[node.ID] {
			return
		}
		seen[node.ID] = true
		view.Nodes = append(view.Nodes, node)
	}

	addNode(models.GraphNode{
		ID:    sectionID,
		Label: stringProp(n.Root, "section_number"),
		Type:  models.NodeLegalSection,
		Data:  n.Root,
	})

	for _, nb := range n.Related {
		id := stringProp(nb.Node, "section_id")
		if id == "" {
			continue
		}
		addNode(models.GraphNode{
			ID:    id,
			Label: stringProp(nb.Node, "section_number"),
			Type:  models.NodeLegalSection,
			Data:  nb.Node,
		})
		view.Edges = append(view.Edges, models.GraphEdge{
			From:  sectionID,
			To:    id,
			Label: models.EdgeRelatedTo,
			Data:  nb.Rel,
		})
	}

	for _, nb := range n.Actions {
		id := stringProp(nb.Node, "action_id")
		if id == "" {
			continue
		}
		addNode(models.GraphNode{
			ID:    id,
			Label: truncateLabel(stringProp(nb.Node, "action_name")),
			Type:  models.NodeLegalAction,
			Data:  nb.Node,
		})
		view.Edges = append(view.Edges, models.GraphEdge{
			From:  sectionID,
			To:    id,
			Label: models.EdgeHasAction,
			Data:  nb.Rel,
		})
	}

	for _, nb := range n.Outcomes {
		id := stringProp(nb.Node, "outcome_id")
		if id == "" {
			continue
		}
		addNode(models.GraphNode{
			ID:    id,
			Label: truncateLabel(stringProp(nb.Node, "outcome_description")),
			Type:  models.NodeOutcome,
			Data:  nb.Node,
		})
		if nb.ActionID == "" {
			continue
		}
		view.Edges = append(view.Edges, models.GraphEdge{
			From:  nb.ActionID,
			To:    id,
			Label: models.EdgeLeadsTo,
			Data:  nb.Rel,
		})
	}

	for _, nb := range n.Evidence {
		id := stringProp(nb.Node, "evidence_id")
		if id == "" {
			continue
		}
		addNode(models.GraphNode{
			ID:    id,
			Label: truncateLabel(stringProp(nb.Node, "evidence_name")),
			Type:  models.NodeEvidence,
			Data:  nb.Node,
		})
		view.Edges = append(view.Edges, models.GraphEdge{
			From:  sectionID,
			To:    id,
			Label: models.EdgeRequires,
			Data:  nb.Rel,
		})
	}

	for _, nb := range n.CaseTypes {
		id := stringProp(nb.Node, "case_type_id")
		if id == "" {
			continue
		}
		addNode(models.GraphNode{
			ID:    id,
			Label: id,
			Type:  models.NodeCaseType,
			Data:  nb.Node,
		})
		view.Edges = append(view.Edges, models.GraphEdge{
			From:  sectionID,
			To:    id,
			Label: models.EdgeMapsTo,
			Data:  nb.Rel,
		})
	}

	return view
}

// truncateLabel cuts a label to labelRunes runes without adding an ellipsis.
func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= labelRunes {
		return s
	}
	return string(runes[:labelRunes])
}

func stringProp(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}
