package domain

// Warehouse is the origin of the subscription graph.
type Warehouse struct {
	ObjectMeta `json:"metadata" yaml:"metadata" mapstructure:"metadata"`
	Spec       WarehouseSpec `json:"spec" yaml:"spec" mapstructure:"spec"`
}

// WarehouseSpec holds the repositories a Warehouse subscribes to.
type WarehouseSpec struct {
	Subscriptions []RepoSubscription `json:"subscriptions,omitempty" yaml:"subscriptions,omitempty" mapstructure:"subscriptions"`
}

// RepoSubscription is a single artifact source of a Warehouse.
type RepoSubscription struct {
	Kind    string `json:"kind" yaml:"kind" mapstructure:"kind"`
	RepoURL string `json:"repoURL" yaml:"repoURL" mapstructure:"repoURL"`
}
