package topology

import "math"

// segment converts two endpoints into a rotated rectangle of LineThickness.
func segment(a, b Point) Line {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	cx, cy := (a.X+b.X)/2, (a.Y+b.Y)/2
	return Line{
		X:     cx - length/2,
		Y:     cy - LineThickness/2,
		Width: length,
		Angle: math.Atan2(dy, dx) * 180 / math.Pi,
	}
}

func connect(kind EdgeKind, src, dst Node) Connector {
	start, end := src.Out(), dst.In()
	return Connector{
		Kind:  kind,
		From:  src.Name,
		To:    dst.Name,
		Line:  segment(start, end),
		Start: start,
		End:   end,
	}
}

// connectors emits, in topological order of the destination stage, the
// warehouse subscription edge (unless hidden) followed by upstream edges in
// declaration order. Edges to nodes that were not placed are dropped.
func (g *graph) connectors(p placement, hideSubscriptions bool) []Connector {
	out := make([]Connector, 0, len(g.stages))
	for _, i := range g.order {
		s := g.stages[i]
		dst := p.nodes[p.stageNode[s.Name]]

		if len(s.UpstreamNames()) == 0 && !hideSubscriptions {
			if wi, ok := p.whNode[s.Spec.Subscriptions.Warehouse]; ok {
				out = append(out, connect(EdgeSubscription, p.nodes[wi], dst))
			}
		}
		for _, u := range g.upstream[i] {
			src := p.nodes[p.stageNode[g.stages[u].Name]]
			out = append(out, connect(EdgeUpstream, src, dst))
		}
	}
	return out
}
