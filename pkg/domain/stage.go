package domain

// Stage is a named deployment target. Its subscriptions form the edges of the
// pipeline graph.
type Stage struct {
	ObjectMeta `json:"metadata" yaml:"metadata" mapstructure:"metadata"`
	Spec       StageSpec   `json:"spec" yaml:"spec" mapstructure:"spec"`
	Status     StageStatus `json:"status" yaml:"status" mapstructure:"status"`
}

// StageSpec holds the desired configuration of a Stage.
type StageSpec struct {
	Subscriptions Subscriptions `json:"subscriptions" yaml:"subscriptions" mapstructure:"subscriptions"`
}

// Subscriptions describes where a Stage sources Freight from: either directly
// from a Warehouse or from one or more upstream Stages.
type Subscriptions struct {
	Warehouse      string              `json:"warehouse,omitempty" yaml:"warehouse,omitempty" mapstructure:"warehouse"`
	UpstreamStages []StageSubscription `json:"upstreamStages,omitempty" yaml:"upstreamStages,omitempty" mapstructure:"upstreamStages"`
}

// StageSubscription references an upstream Stage by name.
type StageSubscription struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
}

// StageStatus is the observed state of a Stage.
type StageStatus struct {
	CurrentFreight *FreightReference `json:"currentFreight,omitempty" yaml:"currentFreight,omitempty" mapstructure:"currentFreight"`
}

// FreightReference points at a Freight and the Warehouse it came from.
type FreightReference struct {
	Name      string `json:"name" yaml:"name" mapstructure:"name"`
	Warehouse string `json:"warehouse,omitempty" yaml:"warehouse,omitempty" mapstructure:"warehouse"`
}

// UpstreamNames returns the names of the upstream Stages, skipping empty refs.
func (s Stage) UpstreamNames() []string {
	names := make([]string, 0, len(s.Spec.Subscriptions.UpstreamStages))
	for _, up := range s.Spec.Subscriptions.UpstreamStages {
		if up.Name != "" {
			names = append(names, up.Name)
		}
	}
	return names
}

// CurrentFreightName returns the name of the deployed Freight, or "".
func (s Stage) CurrentFreightName() string {
	if s.Status.CurrentFreight == nil {
		return ""
	}
	return s.Status.CurrentFreight.Name
}

// SourceWarehouse returns the warehouse of the deployed Freight, falling back
// to the directly subscribed Warehouse.
func (s Stage) SourceWarehouse() string {
	if s.Status.CurrentFreight != nil && s.Status.CurrentFreight.Warehouse != "" {
		return s.Status.CurrentFreight.Warehouse
	}
	return s.Spec.Subscriptions.Warehouse
}
