package tui_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pipeview/internal/presentation/tui"
	"github.com/aretw0/pipeview/pkg/domain"
	"github.com/aretw0/pipeview/pkg/promotions"
)

func TestPromotionsMarkdown(t *testing.T) {
	rows := promotions.Rows([]domain.Promotion{
		{
			ObjectMeta: domain.ObjectMeta{
				Name:              "prod.b",
				CreationTimestamp: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
				Annotations:       map[string]string{domain.AnnotationAbort: "req-1"},
			},
			Spec:   domain.PromotionSpec{Stage: "prod", Freight: "abcdef0123"},
			Status: &domain.PromotionStatus{Phase: domain.PromotionPhaseRunning},
		},
		{
			ObjectMeta: domain.ObjectMeta{
				Name:              "prod.a",
				CreationTimestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
			},
			Spec:   domain.PromotionSpec{Stage: "prod", Freight: "1234567890"},
			Status: &domain.PromotionStatus{Phase: domain.PromotionPhaseSucceeded, Message: "a|b"},
		},
	})

	md := tui.PromotionsMarkdown("prod", rows)
	assert.Contains(t, md, "## Promotions for `prod`")
	assert.Contains(t, md, "| ● | prod.b | `abcdef0` | **Running (abort)** | 2024-05-02 09:00:00 | N/A | "+promotions.AbortQueuedMessage+" |")
	assert.Contains(t, md, "| prod.a | `1234567` | Succeeded |")
	assert.Contains(t, md, `a\|b`)
}

func TestPromotionsMarkdown_Empty(t *testing.T) {
	assert.Contains(t, tui.PromotionsMarkdown("qa", nil), "_No promotions yet._")
}

func TestRenderer_Plain(t *testing.T) {
	render, err := tui.NewRenderer(true)
	require.NoError(t, err)

	out, err := render("# Title\n\nbody")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, termenv.Ascii, ":8080")
	assert.Contains(t, buf.String(), "listening on :8080")
}
