package pipeline

import (
	"context"
	"fmt"

	"github.com/aretw0/pipeview/pkg/domain"
	"github.com/aretw0/pipeview/pkg/interaction"
	"github.com/aretw0/pipeview/pkg/topology"
)

// Interaction returns the current selection.
func (s *Session) Interaction() interaction.Selection {
	return s.state.Current()
}

// SelectStage handles a promote click on a stage. The warehouse filter
// follows the stage's freight origin. Promoting subscribers defaults to the
// stage's current freight. Clicking the selected stage again deselects it.
func (s *Session) SelectStage(action interaction.Action, stage string) (interaction.Selection, error) {
	st, ok := s.stages.Snapshot().Get(stage)
	if !ok {
		return s.state.Current(), fmt.Errorf("stage %s: %w", stage, domain.ErrNotFound)
	}

	freight := ""
	if action == interaction.ActionPromoteSubscribers {
		freight = st.CurrentFreightName()
	}
	sel, err := s.state.Select(action, stage, freight)
	if err != nil {
		return sel, err
	}

	s.mu.Lock()
	if sel.Idle() {
		s.selectedWarehouse = ""
	} else {
		s.selectedWarehouse = st.SourceWarehouse()
	}
	s.mu.Unlock()
	return sel, nil
}

// StartManualApproval selects a freight to approve; the next stage clicked
// receives the approval.
func (s *Session) StartManualApproval(freight string) (interaction.Selection, error) {
	if freight == "" {
		return s.state.Current(), domain.ErrNoFreightSelected
	}
	return s.state.Select(interaction.ActionManualApproval, "", freight)
}

// ClickStage commits a manual approval for stage when one is pending. On
// success the interaction is cleared and freight is refetched; on failure the
// state is left as is so the user can retry or cancel.
func (s *Session) ClickStage(ctx context.Context, stage string) (bool, error) {
	approval, ok, err := s.state.Click(stage)
	if err != nil || !ok {
		return false, err
	}
	if err := s.source.ApproveFreight(ctx, s.project, approval.Stage, approval.Freight); err != nil {
		s.logger.Warn("Manual approval failed", "project", s.project, "stage", approval.Stage, "freight", approval.Freight, "err", err)
		return false, fmt.Errorf("failed to approve freight %s for stage %s: %w", approval.Freight, approval.Stage, err)
	}
	s.logger.Info("Freight manually approved", "project", s.project, "stage", approval.Stage, "freight", approval.Freight)
	s.state.Clear()
	s.refetchFreight(ctx)
	return true, nil
}

// RefreshWarehouse asks the warehouse to discover new freight. On success
// the interaction is cleared and freight is refetched.
func (s *Session) RefreshWarehouse(ctx context.Context, warehouse string) error {
	if err := s.source.RefreshWarehouse(ctx, s.project, warehouse); err != nil {
		s.logger.Warn("Warehouse refresh failed", "project", s.project, "warehouse", warehouse, "err", err)
		return fmt.Errorf("failed to refresh warehouse %s: %w", warehouse, err)
	}
	s.logger.Info("Warehouse refreshed", "project", s.project, "warehouse", warehouse)
	s.state.Clear()
	s.refetchFreight(ctx)
	return nil
}

// Cancel clears the interaction and the warehouse filter.
func (s *Session) Cancel() {
	s.state.Clear()
	s.mu.Lock()
	s.selectedWarehouse = ""
	s.mu.Unlock()
}

// ToggleWarehouseFilter filters freight to warehouse, or clears the filter
// when it is already selected. Returns the active filter.
func (s *Session) ToggleWarehouseFilter(warehouse string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedWarehouse == warehouse {
		s.selectedWarehouse = ""
	} else {
		s.selectedWarehouse = warehouse
	}
	return s.selectedWarehouse
}

// ResetWarehouseFilter clears the filter, which also ends any pending action.
func (s *Session) ResetWarehouseFilter() {
	s.Cancel()
}

// SelectedWarehouse returns the active warehouse filter, or "".
func (s *Session) SelectedWarehouse() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedWarehouse
}

// IsFaded reports whether stage is outside the target set of the pending action.
func (s *Session) IsFaded(stage string) bool {
	return s.state.IsFaded(stage, s.SubscribersByStage())
}

// SubscribersByStage maps each stage to its direct subscribers.
func (s *Session) SubscribersByStage() map[string][]string {
	return topology.Subscribers(s.stages.Snapshot().Items())
}

// StagesPerFreight maps each freight name to the stages running it.
func (s *Session) StagesPerFreight() map[string][]string {
	return topology.StagesPerFreight(s.stages.Snapshot().Items())
}

// HighlightedStages returns the stages to highlight while hovering a stage
// (isStage) or a freight. Highlighting is off during manual approval.
func (s *Session) HighlightedStages(id string, isStage bool) map[string]bool {
	out := make(map[string]bool)
	if s.state.Current().Action == interaction.ActionManualApproval {
		return out
	}
	if isStage {
		out[id] = true
		return out
	}
	for _, name := range s.StagesPerFreight()[id] {
		out[name] = true
	}
	return out
}
