package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pipeview/pkg/topology"
)

// GraphOverlay contains interaction state to visualize on the graph.
type GraphOverlay struct {
	FadedStages []string
	Selected    string
}

// GenerateMermaid produces a Mermaid flowchart from a laid-out pipeline.
// It groups nodes by lane and applies semantic styling:
// - Warehouse: [("Cylinder")]
// - Stage: ["Rectangle"] filled with its assigned color
// - Subscription edges are dotted, upstream edges solid.
// It also applies overlay styles (Faded/Selected) if provided.
func GenerateMermaid(res topology.Result, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	warehouses := make(map[string]bool)
	for _, n := range res.Nodes {
		if n.Type == topology.NodeTypeWarehouse {
			warehouses[n.Name] = true
		}
	}

	for i, lane := range res.Lanes {
		title := lane.Warehouse
		if lane.Fallback {
			title = "unattributed"
		}
		sb.WriteString(fmt.Sprintf("    subgraph lane%d[\"%s\"]\n", i, escapeLabel(title)))
		if !lane.Fallback && warehouses[lane.Warehouse] {
			sb.WriteString(fmt.Sprintf("        %s[(\"%s\")]\n", warehouseID(lane.Warehouse), escapeLabel(lane.Warehouse)))
		}
		for _, name := range lane.Stages {
			sb.WriteString(fmt.Sprintf("        %s[\"%s\"]\n", stageID(name), escapeLabel(name)))
		}
		sb.WriteString("    end\n")
	}

	for _, c := range res.Connectors {
		from := stageID(c.From)
		arrow := "-->"
		if c.Kind == topology.EdgeSubscription {
			from = warehouseID(c.From)
			arrow = "-.->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", from, arrow, stageID(c.To)))
	}

	for _, s := range res.SortedStages {
		if color := res.StageColors[s.Name]; color != "" {
			sb.WriteString(fmt.Sprintf("    style %s fill:%s,color:#fff\n", stageID(s.Name), color))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef faded opacity:0.3;\n")
		sb.WriteString("    classDef selected stroke:#000,stroke-width:4px;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.FadedStages {
			id := stageID(name)
			if !seen[id] && name != "" {
				seen[id] = true
				sb.WriteString(fmt.Sprintf("    class %s faded;\n", id))
			}
		}
		if overlay.Selected != "" {
			sb.WriteString(fmt.Sprintf("    class %s selected;\n", stageID(overlay.Selected)))
		}
	}

	return sb.String()
}

func stageID(name string) string {
	return "stage_" + sanitizeMermaidID(name)
}

func warehouseID(name string) string {
	return "wh_" + sanitizeMermaidID(name)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
