package promotions

import (
	"strings"
	"time"

	"github.com/aretw0/pipeview/pkg/domain"
)

// AbortQueuedMessage replaces the status message of a promotion whose abort
// was requested but not yet processed.
const AbortQueuedMessage = "Promotion Abort Request is in Queue"

// HighlightAbort is the highlight used for pending abort requests.
const HighlightAbort = "red"

// Row is the display projection of a promotion.
type Row struct {
	Key          string                `json:"key"`
	Name         string                `json:"name"`
	Stage        string                `json:"stage"`
	Freight      string                `json:"freight"`
	ShortFreight string                `json:"shortFreight"`
	CreatedAt    time.Time             `json:"createdAt"`
	CreatedBy    string                `json:"createdBy"`
	Phase        domain.PromotionPhase `json:"phase"`
	Message      string                `json:"message,omitempty"`
	AbortPending bool                  `json:"abortPending,omitempty"`
	Highlight    string                `json:"highlight,omitempty"`
	Latest       bool                  `json:"latest,omitempty"`
}

// Annotate projects p for display. p is not modified.
func Annotate(p domain.Promotion) Row {
	r := Row{
		Key:          p.UID,
		Name:         p.Name,
		Stage:        p.Spec.Stage,
		Freight:      p.Spec.Freight,
		ShortFreight: shorten(p.Spec.Freight, 7),
		CreatedAt:    p.CreationTimestamp,
		CreatedBy:    createdBy(p),
		Phase:        p.Phase(),
	}
	if p.Status != nil {
		r.Message = p.Status.Message
	}
	if p.HasAbortRequest() && !p.Phase().IsTerminal() {
		r.AbortPending = true
		r.Highlight = HighlightAbort
		if p.Status != nil {
			r.Message = AbortQueuedMessage
		}
	}
	return r
}

// Rows sorts items for display and annotates them. The first row is the latest.
func Rows(items []domain.Promotion) []Row {
	sorted := Sorted(items)
	rows := make([]Row, len(sorted))
	for i, p := range sorted {
		rows[i] = Annotate(p)
	}
	if len(rows) > 0 {
		rows[0].Latest = true
	}
	return rows
}

// createdBy extracts the identity from the "kind:identity" create-actor
// annotation, or "N/A".
func createdBy(p domain.Promotion) string {
	v, ok := p.Annotation(domain.AnnotationCreateActor)
	if !ok {
		return "N/A"
	}
	if parts := strings.Split(v, ":"); len(parts) > 1 && parts[1] != "" {
		return parts[1]
	}
	return v
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
