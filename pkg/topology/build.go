package topology

// Build lays out stages and warehouses. It has no side effects and never
// fails; see the package documentation for the layout rules.
func Build(in Input) Result {
	g := newGraph(in.Stages, in.Warehouses)
	g.sort()
	g.rankAndAttribute()

	lanes := g.lanes()
	colors := AssignColors(g.sortedNames(), in.Colors)
	p := g.layout(lanes, colors)

	return Result{
		Nodes:        p.nodes,
		Connectors:   g.connectors(p, in.HideSubscriptions),
		Box:          boundingBox(p.nodes),
		SortedStages: g.sortedStages(),
		StageColors:  colors,
		Lanes:        lanes,
	}
}
