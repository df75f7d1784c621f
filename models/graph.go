package models

// Node type labels used in graph visualization payloads.
const (
	NodeLegalSection = "LegalSection"
	NodeLegalAction  = "LegalAction"
	NodeCaseType     = "CaseType"
	NodeEvidence     = "Evidence"
	NodeOutcome      = "Outcome"
)

// Edge labels used in graph visualization payloads.
const (
	EdgeRelatedTo = "RELATED_TO"
	EdgeHasAction = "HAS_ACTION"
	EdgeLeadsTo   = "LEADS_TO"
	EdgeRequires  = "REQUIRES"
	EdgeMapsTo    = "MAPS_TO"
)

// GraphNode is one node of a visualization graph. Data carries the full
// property map of the underlying store node.
type GraphNode struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Type  string         `json:"type"`
	Data  map[string]any `json:"data"`
}

// GraphEdge is one edge of a visualization graph. Data carries the property
// map of the underlying relation.
type GraphEdge struct {
	From  string         `json:"from"`
	To    string         `json:"to"`
	Label string         `json:"label"`
	Data  map[string]any `json:"data"`
}

// GraphView is the flattened node/edge structure consumed by the frontend
// graph visualizer.
type GraphView struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
	Root  string      `json:"root"`
}

// Neighbor pairs a neighboring node's property map with the properties of the
// relation that reached it.
type Neighbor struct {
	Node map[string]any
	Rel  map[string]any
}

// OutcomeNeighbor is a Neighbor reached through an action's outcome relation.
// ActionID identifies the action at the start of that relation; empty when
// the originating action could not be determined.
type OutcomeNeighbor struct {
	Neighbor
	ActionID string
}

// SectionNeighborhood is the raw one-hop fan-out around a root section across
// the five relation families, as returned by a graph store. The projection
// layer flattens it into a GraphView.
type SectionNeighborhood struct {
	Root      map[string]any
	Related   []Neighbor
	Actions   []Neighbor
	Outcomes  []OutcomeNeighbor
	Evidence  []Neighbor
	CaseTypes []Neighbor
}
