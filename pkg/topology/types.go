package topology

import "github.com/aretw0/pipeview/pkg/domain"

// Layout dimensions, in pixels.
const (
	StageNodeHeight     = 140.0
	WarehouseNodeHeight = 110.0
	MinNodeWidth        = 200.0
	CharWidth           = 8.0
	LabelPadding        = 24.0
	RankGap             = 60.0
	NodeGap             = 30.0
	LaneGap             = 60.0
	LineThickness       = 2.0
)

// NodeType distinguishes the kinds of node in the graph.
type NodeType string

const (
	NodeTypeStage     NodeType = "stage"
	NodeTypeWarehouse NodeType = "warehouse"
)

// EdgeKind distinguishes warehouse subscriptions from stage-to-stage edges.
type EdgeKind string

const (
	// EdgeSubscription connects a warehouse to a stage subscribing to it.
	// These are the edges hidden by the "hide subscriptions" setting.
	EdgeSubscription EdgeKind = "subscription"
	// EdgeUpstream connects an upstream stage to its subscriber.
	EdgeUpstream EdgeKind = "upstream"
)

// Point is a position in layout space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a positioned stage or warehouse.
type Node struct {
	Type   NodeType `json:"type"`
	Name   string   `json:"name"`
	Lane   string   `json:"lane"`
	Column int      `json:"column"`
	X      float64  `json:"left"`
	Y      float64  `json:"top"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Color  string   `json:"color,omitempty"`

	Stage     *domain.Stage     `json:"stage,omitempty"`
	Warehouse *domain.Warehouse `json:"warehouse,omitempty"`
}

// In is the attachment point of incoming connectors (middle of the left edge).
func (n Node) In() Point {
	return Point{X: n.X, Y: n.Y + n.Height/2}
}

// Out is the attachment point of outgoing connectors (middle of the right edge).
func (n Node) Out() Point {
	return Point{X: n.X + n.Width, Y: n.Y + n.Height/2}
}

// Line is a segment expressed as a rectangle of LineThickness height whose
// top-left corner is (X, Y) and which is rotated by Angle degrees around its
// centre. This is what a renderer needs to place a single rotated element.
type Line struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
	Angle float64 `json:"angle"`
}

// Connector is a drawn edge between two nodes.
type Connector struct {
	Kind EdgeKind `json:"kind"`
	From string   `json:"from"`
	To   string   `json:"to"`
	Line Line     `json:"line"`

	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Box is the axis-aligned bounding rectangle of all nodes.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Lane groups the stages attributed to one warehouse. The fallback lane has
// an empty Warehouse and Fallback set.
type Lane struct {
	Warehouse string   `json:"warehouse"`
	Fallback  bool     `json:"fallback,omitempty"`
	Stages    []string `json:"stages"`
}

// Input is everything Build reads.
type Input struct {
	Stages            []domain.Stage
	Warehouses        []domain.Warehouse
	HideSubscriptions bool
	// Colors is the persisted stage color assignment. It is never mutated.
	Colors map[string]string
}

// Result is the laid-out graph.
type Result struct {
	Nodes        []Node            `json:"nodes"`
	Connectors   []Connector       `json:"connectors"`
	Box          Box               `json:"box"`
	SortedStages []domain.Stage    `json:"sortedStages"`
	StageColors  map[string]string `json:"stageColors"`
	Lanes        []Lane            `json:"lanes"`
}

// Fallback returns the names of the stages attributed to no warehouse.
func (r Result) Fallback() []string {
	for _, l := range r.Lanes {
		if l.Fallback {
			return l.Stages
		}
	}
	return nil
}

// SortedStageNames returns the names of SortedStages.
func (r Result) SortedStageNames() []string {
	names := make([]string, len(r.SortedStages))
	for i, s := range r.SortedStages {
		names[i] = s.Name
	}
	return names
}

// Node returns the node for a stage or warehouse name.
func (r Result) Node(t NodeType, name string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.Type == t && n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}
