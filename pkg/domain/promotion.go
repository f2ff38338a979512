package domain

const (
	// AnnotationAbort marks a Promotion for which an abort was requested.
	AnnotationAbort = "kargo.akuity.io/abort"
	// AnnotationCreateActor records who created a Promotion ("kind:identity").
	AnnotationCreateActor = "kargo.akuity.io/create-actor"
)

// PromotionPhase is the lifecycle phase of a Promotion.
type PromotionPhase string

const (
	PromotionPhasePending   PromotionPhase = "Pending"
	PromotionPhaseRunning   PromotionPhase = "Running"
	PromotionPhaseSucceeded PromotionPhase = "Succeeded"
	PromotionPhaseFailed    PromotionPhase = "Failed"
	PromotionPhaseErrored   PromotionPhase = "Errored"
	PromotionPhaseAborted   PromotionPhase = "Aborted"
)

// IsTerminal reports whether no further transition can happen.
func (p PromotionPhase) IsTerminal() bool {
	switch p {
	case PromotionPhaseSucceeded, PromotionPhaseFailed, PromotionPhaseErrored, PromotionPhaseAborted:
		return true
	default:
		return false
	}
}

// Promotion is a request to move one Freight into one Stage.
type Promotion struct {
	ObjectMeta `json:"metadata" yaml:"metadata" mapstructure:"metadata"`
	Spec       PromotionSpec    `json:"spec" yaml:"spec" mapstructure:"spec"`
	Status     *PromotionStatus `json:"status,omitempty" yaml:"status,omitempty" mapstructure:"status"`
}

// PromotionSpec names the target Stage and Freight.
type PromotionSpec struct {
	Stage   string `json:"stage" yaml:"stage" mapstructure:"stage"`
	Freight string `json:"freight" yaml:"freight" mapstructure:"freight"`
}

// PromotionStatus is the observed state of a Promotion.
type PromotionStatus struct {
	Phase   PromotionPhase `json:"phase,omitempty" yaml:"phase,omitempty" mapstructure:"phase"`
	Message string         `json:"message,omitempty" yaml:"message,omitempty" mapstructure:"message"`
}

// Phase returns the current phase, or "" when no status was reported yet.
func (p Promotion) Phase() PromotionPhase {
	if p.Status == nil {
		return ""
	}
	return p.Status.Phase
}

// HasAbortRequest reports whether an abort was requested for the Promotion.
func (p Promotion) HasAbortRequest() bool {
	v, ok := p.Annotation(AnnotationAbort)
	return ok && v != ""
}
