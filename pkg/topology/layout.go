package topology

import "unicode/utf8"

// nodeWidth is the larger of MinNodeWidth and the width of the label.
func nodeWidth(label string) float64 {
	return max(MinNodeWidth, float64(utf8.RuneCountInString(label))*CharWidth+2*LabelPadding)
}

type placement struct {
	nodes     []Node
	stageNode map[string]int
	whNode    map[string]int
}

func (g *graph) layout(lanes []Lane, colors map[string]string) placement {
	p := placement{
		stageNode: make(map[string]int, len(g.stages)),
		whNode:    make(map[string]int, len(g.warehouses)),
	}

	// Column 0 holds warehouses; a stage of rank r sits in column r+1.
	cols := 1
	for _, r := range g.rank {
		cols = max(cols, r+2)
	}
	colWidth := make([]float64, cols)
	for _, l := range lanes {
		if i, ok := g.whIndex[l.Warehouse]; ok && !l.Fallback {
			colWidth[0] = max(colWidth[0], nodeWidth(g.warehouses[i].Name))
		}
		for _, name := range l.Stages {
			i := g.index[name]
			colWidth[g.rank[i]+1] = max(colWidth[g.rank[i]+1], nodeWidth(name))
		}
	}
	colX := make([]float64, cols)
	for c := 1; c < cols; c++ {
		colX[c] = colX[c-1]
		if colWidth[c-1] > 0 {
			colX[c] += colWidth[c-1] + RankGap
		}
	}

	laneY := 0.0
	for li, l := range lanes {
		byCol := make([][]int, cols)
		for _, name := range l.Stages {
			i := g.index[name]
			byCol[g.rank[i]+1] = append(byCol[g.rank[i]+1], i)
		}

		wi, hasWarehouse := g.whIndex[l.Warehouse]
		hasWarehouse = hasWarehouse && !l.Fallback

		laneHeight := 0.0
		if hasWarehouse {
			laneHeight = WarehouseNodeHeight
		}
		colHeight := make([]float64, cols)
		for c, members := range byCol {
			if len(members) == 0 {
				continue
			}
			colHeight[c] = float64(len(members))*StageNodeHeight + float64(len(members)-1)*NodeGap
			laneHeight = max(laneHeight, colHeight[c])
		}
		if laneHeight == 0 {
			continue
		}
		if li > 0 && len(p.nodes) > 0 {
			laneY += LaneGap
		}

		if hasWarehouse {
			w := g.warehouses[wi]
			width := nodeWidth(w.Name)
			p.whNode[w.Name] = len(p.nodes)
			p.nodes = append(p.nodes, Node{
				Type:      NodeTypeWarehouse,
				Name:      w.Name,
				Lane:      l.Warehouse,
				Column:    0,
				X:         colX[0] + (colWidth[0]-width)/2,
				Y:         laneY + (laneHeight-WarehouseNodeHeight)/2,
				Width:     width,
				Height:    WarehouseNodeHeight,
				Warehouse: &w,
			})
		}

		for c, members := range byCol {
			y := laneY + (laneHeight-colHeight[c])/2
			for _, i := range members {
				s := g.stages[i]
				width := nodeWidth(s.Name)
				p.stageNode[s.Name] = len(p.nodes)
				p.nodes = append(p.nodes, Node{
					Type:   NodeTypeStage,
					Name:   s.Name,
					Lane:   l.Warehouse,
					Column: c,
					X:      colX[c] + (colWidth[c]-width)/2,
					Y:      y,
					Width:  width,
					Height: StageNodeHeight,
					Color:  colors[s.Name],
					Stage:  &s,
				})
				y += StageNodeHeight + NodeGap
			}
		}
		laneY += laneHeight
	}
	return p
}

// boundingBox returns the minimal rectangle containing every node, or the
// zero Box when there are none.
func boundingBox(nodes []Node) Box {
	if len(nodes) == 0 {
		return Box{}
	}
	minX, minY := nodes[0].X, nodes[0].Y
	maxX, maxY := nodes[0].X+nodes[0].Width, nodes[0].Y+nodes[0].Height
	for _, n := range nodes[1:] {
		minX = min(minX, n.X)
		minY = min(minY, n.Y)
		maxX = max(maxX, n.X+n.Width)
		maxY = max(maxY, n.Y+n.Height)
	}
	return Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
