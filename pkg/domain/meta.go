package domain

import "time"

// Object is implemented by every resource that can live in a cache.
// Identity is the name, unique within a project.
type Object interface {
	GetName() string
}

// ObjectMeta carries the metadata common to all resources.
type ObjectMeta struct {
	Name              string            `json:"name" yaml:"name" mapstructure:"name"`
	Namespace         string            `json:"namespace,omitempty" yaml:"namespace,omitempty" mapstructure:"namespace"`
	UID               string            `json:"uid,omitempty" yaml:"uid,omitempty" mapstructure:"uid"`
	CreationTimestamp time.Time         `json:"creationTimestamp,omitempty" yaml:"creationTimestamp,omitempty" mapstructure:"creationTimestamp"`
	Annotations       map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty" mapstructure:"annotations"`
}

// GetName returns the identity of the object.
func (m ObjectMeta) GetName() string {
	return m.Name
}

// Annotation returns the annotation value for key and whether it is set.
func (m ObjectMeta) Annotation(key string) (string, bool) {
	if m.Annotations == nil {
		return "", false
	}
	v, ok := m.Annotations[key]
	return v, ok
}
