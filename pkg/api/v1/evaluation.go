package v1

import "flaggate/pkg/constraints"

// Decision is the wire form of an evaluation result, shared by the server
// and the consumer SDK.
type Decision struct {
	FeatureKey string             `json:"feature_key"`
	Enabled    bool               `json:"enabled"`
	Source     constraints.Source `json:"source"`
}
