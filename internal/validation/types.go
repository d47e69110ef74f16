package validation

// CreateDispatchRequest is the payload for POST /api/dispatch.
// Only action is required; everything else is relayed as submitted.
type CreateDispatchRequest struct {
	Service         string                 `json:"service,omitempty"`
	Action          string                 `json:"action" validate:"notblank"`
	Status          string                 `json:"status,omitempty"`
	Profile         map[string]interface{} `json:"profile,omitempty"`
	Highlights      []string               `json:"highlights,omitempty"`
	Recommendations []string               `json:"recommendations,omitempty"`
	Medications     []string               `json:"medications,omitempty"`
}
