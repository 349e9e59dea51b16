package api

import "time"

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Analyses  int       `json:"analyses"`
	Uptime    string    `json:"uptime"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// AnalysisResponse describes one loaded analysis.
type AnalysisResponse struct {
	ID         string              `json:"id"`
	Nodes      int                 `json:"nodes"`
	Edges      int                 `json:"edges"`
	Files      int                 `json:"files"`
	Externals  int                 `json:"externals"`
	FileErrors map[string][]string `json:"fileErrors,omitempty"`
}

// EventRequest is one interaction event posted against an analysis.
type EventRequest struct {
	Type   string  `json:"type" validate:"required,oneof=hover unhover click focus pan zoom drag enddrag"`
	NodeID string  `json:"nodeId,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Factor float64 `json:"factor,omitempty" validate:"gte=0"`
	On     bool    `json:"on,omitempty"`
}
