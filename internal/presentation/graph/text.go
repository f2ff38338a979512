package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/pipeview/pkg/topology"
)

// WriteText prints the stages in topological order, one per line, grouped
// under their lane. Each stage gets a swatch in its assigned color when the
// profile supports it.
func WriteText(w io.Writer, res topology.Result, profile termenv.Profile) error {
	upstream := make(map[string][]string)
	for _, c := range res.Connectors {
		if c.Kind == topology.EdgeUpstream {
			upstream[c.To] = append(upstream[c.To], c.From)
		}
	}

	for _, lane := range res.Lanes {
		title := lane.Warehouse
		if lane.Fallback {
			title = "(no warehouse)"
		}
		if _, err := fmt.Fprintln(w, profile.String(title).Bold()); err != nil {
			return err
		}

		for _, name := range lane.Stages {
			swatch := profile.String("■").Foreground(profile.Color(res.StageColors[name]))
			line := fmt.Sprintf("  %s %s", swatch, name)
			if ups := upstream[name]; len(ups) > 0 {
				line += " <- " + strings.Join(ups, ", ")
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}
