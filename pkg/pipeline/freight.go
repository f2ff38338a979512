package pipeline

import (
	"context"

	"github.com/aretw0/pipeview/pkg/domain"
)

// RefetchFreight replaces the freight snapshot with a fresh query.
func (s *Session) RefetchFreight(ctx context.Context) error {
	groups, err := s.source.QueryFreight(ctx, s.project)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.freight = groups
	s.mu.Unlock()
	s.updates.broadcast(Update{Project: s.project, Reason: "freight"})
	return nil
}

func (s *Session) refetchFreight(ctx context.Context) {
	if err := s.RefetchFreight(ctx); err != nil {
		s.logger.Warn("Freight refetch failed", "project", s.project, "err", err)
	}
}

// Freight returns all freight of the project.
func (s *Session) Freight() []domain.Freight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Freight(nil), s.freight.All()...)
}

// FreightByName looks a freight up by name.
func (s *Session) FreightByName(name string) (domain.Freight, bool) {
	for _, f := range s.Freight() {
		if f.Name == name {
			return f, true
		}
	}
	return domain.Freight{}, false
}

// FilteredFreight returns the freight of the selected warehouse, or all of
// it when no warehouse filter is active.
func (s *Session) FilteredFreight() []domain.Freight {
	selected := s.SelectedWarehouse()
	all := s.Freight()
	if selected == "" {
		return all
	}
	out := make([]domain.Freight, 0, len(all))
	for _, f := range all {
		if f.Warehouse == selected {
			out = append(out, f)
		}
	}
	return out
}
