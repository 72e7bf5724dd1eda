package dto

// PredictionResponse is the wire form of a prediction.
type PredictionResponse struct {
	ID             string   `json:"id"`
	Department     string   `json:"department"`
	Timestamp      int64    `json:"timestamp"`
	PredictionType string   `json:"predictionType"`
	PredictedValue int      `json:"predictedValue"`
	Confidence     float64  `json:"confidence"`
	TimeHorizon    int      `json:"timeHorizon"`
	Factors        []string `json:"factors"`
}

// RecommendationResponse is the wire form of a recommendation.
type RecommendationResponse struct {
	ID              string `json:"id"`
	Department      string `json:"department"`
	Timestamp       int64  `json:"timestamp"`
	Type            string `json:"type"`
	Priority        string `json:"priority"`
	Action          string `json:"action"`
	Description     string `json:"description"`
	EstimatedImpact string `json:"estimatedImpact"`
	Status          string `json:"status"`
	ImplementedAt   *int64 `json:"implementedAt,omitempty"`
}

// AlertResponse is the wire form of an alert.
type AlertResponse struct {
	ID             string  `json:"id"`
	Department     string  `json:"department"`
	Timestamp      int64   `json:"timestamp"`
	Severity       string  `json:"severity"`
	Type           string  `json:"type"`
	Message        string  `json:"message"`
	Acknowledged   bool    `json:"acknowledged"`
	AcknowledgedBy *string `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *int64  `json:"acknowledgedAt,omitempty"`
}

// AcknowledgeAlertRequest payload. When empty the caller's identity is used.
type AcknowledgeAlertRequest struct {
	AcknowledgedBy string `json:"acknowledgedBy"`
}

// GenerateResponse reports a synthetic regeneration.
type GenerateResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Patients  int    `json:"patients"`
	Events    int    `json:"events"`
	Staff     int    `json:"staff"`
	Resources int    `json:"resources"`
}

// PredictionsGeneratedResponse reports an emitter run.
type PredictionsGeneratedResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Predictions     int    `json:"predictions"`
	Recommendations int    `json:"recommendations"`
	Alerts          int    `json:"alerts"`
}

// StepMoveResponse is one simulated transition.
type StepMoveResponse struct {
	PatientID  string `json:"patientId"`
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
	Department string `json:"department"`
}
