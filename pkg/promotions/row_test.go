package promotions_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/pipeview/pkg/domain"
	"github.com/aretw0/pipeview/pkg/promotions"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func promotion(name string, phase domain.PromotionPhase, age time.Duration) domain.Promotion {
	p := domain.Promotion{
		ObjectMeta: domain.ObjectMeta{
			Name:              name,
			UID:               "uid-" + name,
			CreationTimestamp: base.Add(-age),
		},
		Spec: domain.PromotionSpec{Stage: "dev", Freight: "4f1c2d9e7a0b"},
	}
	if phase != "" {
		p.Status = &domain.PromotionStatus{Phase: phase, Message: "working"}
	}
	return p
}

func names(items []domain.Promotion) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.Name
	}
	return out
}

func TestCompare(t *testing.T) {
	running := promotion("running", domain.PromotionPhaseRunning, time.Hour)
	pending := promotion("pending", "", 2*time.Hour)
	newDone := promotion("new-done", domain.PromotionPhaseSucceeded, 0)
	oldDone := promotion("old-done", domain.PromotionPhaseFailed, 3*time.Hour)

	assert.Negative(t, promotions.Compare(running, newDone), "non-terminal first")
	assert.Negative(t, promotions.Compare(pending, newDone), "no status counts as non-terminal")
	assert.Negative(t, promotions.Compare(running, pending), "newer first")
	assert.Positive(t, promotions.Compare(oldDone, newDone))
	assert.Zero(t, promotions.Compare(running, running))

	twinA := promotion("a", domain.PromotionPhaseRunning, time.Hour)
	twinB := promotion("b", domain.PromotionPhaseRunning, time.Hour)
	assert.Negative(t, promotions.Compare(twinA, twinB), "name breaks ties")
}

func TestSorted_DoesNotMutate(t *testing.T) {
	items := []domain.Promotion{
		promotion("old-done", domain.PromotionPhaseSucceeded, 3*time.Hour),
		promotion("running", domain.PromotionPhaseRunning, 2*time.Hour),
		promotion("new-done", domain.PromotionPhaseAborted, time.Hour),
		promotion("fresh", domain.PromotionPhasePending, 0),
	}

	sorted := promotions.Sorted(items)

	assert.Equal(t, []string{"fresh", "running", "new-done", "old-done"}, names(sorted))
	assert.Equal(t, []string{"old-done", "running", "new-done", "fresh"}, names(items))
}

func TestAnnotate(t *testing.T) {
	p := promotion("p1", domain.PromotionPhaseRunning, 0)
	p.Annotations = map[string]string{domain.AnnotationCreateActor: "email:jane@example.com"}

	row := promotions.Annotate(p)

	assert.Equal(t, promotions.Row{
		Key:          "uid-p1",
		Name:         "p1",
		Stage:        "dev",
		Freight:      "4f1c2d9e7a0b",
		ShortFreight: "4f1c2d9",
		CreatedAt:    base,
		CreatedBy:    "jane@example.com",
		Phase:        domain.PromotionPhaseRunning,
		Message:      "working",
	}, row)
}

func TestAnnotate_CreatedBy(t *testing.T) {
	tests := []struct {
		annotation string
		set        bool
		want       string
	}{
		{set: false, want: "N/A"},
		{annotation: "admin", set: true, want: "admin"},
		{annotation: "subject:", set: true, want: "subject:"},
		{annotation: "email:a:b", set: true, want: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			p := promotion("p", "", 0)
			if tt.set {
				p.Annotations = map[string]string{domain.AnnotationCreateActor: tt.annotation}
			}
			assert.Equal(t, tt.want, promotions.Annotate(p).CreatedBy)
		})
	}
}

func TestAnnotate_AbortRequest(t *testing.T) {
	t.Run("pending abort", func(t *testing.T) {
		p := promotion("p1", domain.PromotionPhaseRunning, 0)
		p.Annotations = map[string]string{domain.AnnotationAbort: "requested"}

		row := promotions.Annotate(p)

		assert.True(t, row.AbortPending)
		assert.Equal(t, promotions.HighlightAbort, row.Highlight)
		assert.Equal(t, promotions.AbortQueuedMessage, row.Message)
		assert.Equal(t, "working", p.Status.Message, "the promotion itself is untouched")
	})

	t.Run("already terminal", func(t *testing.T) {
		p := promotion("p1", domain.PromotionPhaseAborted, 0)
		p.Annotations = map[string]string{domain.AnnotationAbort: "requested"}

		row := promotions.Annotate(p)

		assert.False(t, row.AbortPending)
		assert.Empty(t, row.Highlight)
		assert.Equal(t, "working", row.Message)
	})

	t.Run("no status yet", func(t *testing.T) {
		p := promotion("p1", "", 0)
		p.Annotations = map[string]string{domain.AnnotationAbort: "requested"}

		row := promotions.Annotate(p)

		assert.True(t, row.AbortPending)
		assert.Empty(t, row.Message)
	})
}

func TestRows(t *testing.T) {
	rows := promotions.Rows([]domain.Promotion{
		promotion("old", domain.PromotionPhaseSucceeded, time.Hour),
		promotion("new", domain.PromotionPhaseSucceeded, 0),
	})

	if assert.Len(t, rows, 2) {
		assert.Equal(t, "new", rows[0].Name)
		assert.True(t, rows[0].Latest)
		assert.False(t, rows[1].Latest)
	}
	assert.Empty(t, promotions.Rows(nil))
}
