package domain

// Freight is an immutable artifact bundle produced by a Warehouse.
type Freight struct {
	ObjectMeta `json:"metadata" yaml:"metadata" mapstructure:"metadata"`
	Alias      string `json:"alias,omitempty" yaml:"alias,omitempty" mapstructure:"alias"`
	Warehouse  string `json:"warehouse" yaml:"warehouse" mapstructure:"warehouse"`
}

// DefaultFreightGroup is the key of the ungrouped freight list.
const DefaultFreightGroup = ""

// FreightGroups is the result of a freight query, keyed by group name.
type FreightGroups map[string][]Freight

// All returns the freight of the default group.
func (g FreightGroups) All() []Freight {
	if g == nil {
		return nil
	}
	return g[DefaultFreightGroup]
}
