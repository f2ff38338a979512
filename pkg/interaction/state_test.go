package interaction_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pipeview/pkg/domain"
	"github.com/aretw0/pipeview/pkg/interaction"
)

var subscribers = map[string][]string{
	"dev": {"qa", "uat"},
	"qa":  {"prod"},
}

func TestState_StartsIdle(t *testing.T) {
	s := interaction.New()

	assert.True(t, s.Current().Idle())
	assert.False(t, s.IsPromoting())
	for _, stage := range []string{"dev", "qa", "prod"} {
		assert.False(t, s.IsFaded(stage, subscribers), stage)
	}
}

func TestState_SelectSameStageTogglesOff(t *testing.T) {
	s := interaction.New()

	sel, err := s.Select(interaction.ActionPromote, "stage-x", "")
	require.NoError(t, err)
	assert.Equal(t, interaction.Selection{Action: interaction.ActionPromote, Stage: "stage-x"}, sel)
	assert.True(t, s.IsPromoting())

	sel, err = s.Select(interaction.ActionPromote, "stage-x", "")
	require.NoError(t, err)
	assert.True(t, sel.Idle())
	assert.False(t, s.IsPromoting())
}

func TestState_SelectOtherStageReplaces(t *testing.T) {
	s := interaction.New()
	_, err := s.Select(interaction.ActionPromote, "dev", "")
	require.NoError(t, err)

	sel, err := s.Select(interaction.ActionPromoteSubscribers, "qa", "f1")
	require.NoError(t, err)

	assert.Equal(t, interaction.Selection{Action: interaction.ActionPromoteSubscribers, Stage: "qa", Freight: "f1"}, sel)
	assert.Equal(t, sel, s.Current())
}

func TestState_SelectInvalidAction(t *testing.T) {
	s := interaction.New()
	_, err := s.Select(interaction.ActionPromote, "dev", "")
	require.NoError(t, err)

	_, err = s.Select("teleport", "qa", "")

	require.ErrorIs(t, err, domain.ErrInvalidAction)
	assert.Equal(t, "dev", s.Current().Stage, "a rejected select leaves the state unchanged")
}

func TestState_Clear(t *testing.T) {
	s := interaction.New()
	_, err := s.Select(interaction.ActionManualApproval, "", "f1")
	require.NoError(t, err)

	s.Clear()
	assert.True(t, s.Current().Idle())

	s.Clear()
	assert.True(t, s.Current().Idle())
}

func TestState_IsFaded(t *testing.T) {
	tests := []struct {
		name   string
		sel    interaction.Selection
		faded  []string
		active []string
	}{
		{
			name:   "idle",
			sel:    interaction.Selection{},
			active: []string{"dev", "qa", "uat", "prod"},
		},
		{
			name:   "promote",
			sel:    interaction.Selection{Action: interaction.ActionPromote, Stage: "qa"},
			faded:  []string{"dev", "uat", "prod"},
			active: []string{"qa"},
		},
		{
			name:   "promote subscribers",
			sel:    interaction.Selection{Action: interaction.ActionPromoteSubscribers, Stage: "dev"},
			faded:  []string{"dev", "prod"},
			active: []string{"qa", "uat"},
		},
		{
			name:  "promote subscribers without subscribers",
			sel:   interaction.Selection{Action: interaction.ActionPromoteSubscribers, Stage: "stage-x"},
			faded: []string{"dev", "qa", "uat", "prod", "stage-x"},
		},
		{
			name:   "manual approval",
			sel:    interaction.Selection{Action: interaction.ActionManualApproval, Freight: "f1"},
			active: []string{"dev", "qa", "uat", "prod"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, stage := range tt.faded {
				assert.True(t, tt.sel.IsFaded(stage, subscribers), stage)
			}
			for _, stage := range tt.active {
				assert.False(t, tt.sel.IsFaded(stage, subscribers), stage)
			}
		})
	}
}

func TestState_ClickOutsideManualApproval(t *testing.T) {
	s := interaction.New()
	_, err := s.Select(interaction.ActionPromote, "dev", "")
	require.NoError(t, err)

	_, ok, err := s.Click("qa")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "dev", s.Current().Stage)
}

func TestState_ClickManualApproval(t *testing.T) {
	s := interaction.New()
	_, err := s.Select(interaction.ActionManualApproval, "", "f1")
	require.NoError(t, err)

	approval, ok, err := s.Click("qa")

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, interaction.Approval{Stage: "qa", Freight: "f1"}, approval)
	assert.True(t, s.IsPromoting(), "the caller clears the state once the approval succeeded")
}

func TestState_ClickWithoutFreight(t *testing.T) {
	s := interaction.New()
	_, err := s.Select(interaction.ActionManualApproval, "", "")
	require.NoError(t, err)

	_, ok, err := s.Click("qa")

	require.ErrorIs(t, err, domain.ErrNoFreightSelected)
	assert.False(t, ok)
}

func TestState_ConcurrentAccess(t *testing.T) {
	s := interaction.New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if i%2 == 0 {
					_, _ = s.Select(interaction.ActionPromote, "dev", "")
				} else {
					s.IsFaded("qa", subscribers)
					s.Clear()
				}
			}
		}(i)
	}
	wg.Wait()
}
