package dto

// CreateAlertRequest represents an alert rule creation request
type CreateAlertRequest struct {
	Type      string  `json:"type" validate:"required"`
	Model     string  `json:"model,omitempty"`
	Threshold *string `json:"threshold,omitempty"`
	Window    string  `json:"window,omitempty"`
	Cadence   string  `json:"cadence,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

// UpdateAlertRequest carries partial updates; absent fields are untouched
type UpdateAlertRequest map[string]interface{}

// TestAlertRequest represents an ad-hoc rule evaluation request
type TestAlertRequest struct {
	Type      string  `json:"type" validate:"required"`
	Model     string  `json:"model,omitempty"`
	Threshold *string `json:"threshold,omitempty"`
	Window    string  `json:"window,omitempty"`
}

// TestAlertResponse reports whether the candidate rule would fire
type TestAlertResponse struct {
	Triggered  bool        `json:"triggered"`
	Evaluation interface{} `json:"evaluation,omitempty"`
}
