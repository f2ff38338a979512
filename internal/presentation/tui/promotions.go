package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/pipeview/pkg/promotions"
)

// PromotionsMarkdown renders promotion rows as a markdown table, newest
// first as given. The latest row is marked and pending aborts are flagged.
func PromotionsMarkdown(stage string, rows []promotions.Row) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Promotions for `%s`\n\n", stage)

	if len(rows) == 0 {
		sb.WriteString("_No promotions yet._\n")
		return sb.String()
	}

	sb.WriteString("| | Name | Freight | Phase | Created | By | Message |\n")
	sb.WriteString("|---|---|---|---|---|---|---|\n")
	for _, r := range rows {
		marker := ""
		if r.Latest {
			marker = "●"
		}
		phase := string(r.Phase)
		if phase == "" {
			phase = "Pending"
		}
		if r.AbortPending {
			phase = "**" + phase + " (abort)**"
		}
		created := "N/A"
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.UTC().Format(time.DateTime)
		}
		fmt.Fprintf(&sb, "| %s | %s | `%s` | %s | %s | %s | %s |\n",
			marker, cell(r.Name), r.ShortFreight, phase, created, cell(r.CreatedBy), cell(r.Message))
	}
	return sb.String()
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
