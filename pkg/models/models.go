/*
Package models defines the JSON wire types of the multiplication HTTP API.

Matrices travel as flat, row-major arrays of size*size numbers.
*/
package models

// MultiplyRequest is the body of POST /multiply.
type MultiplyRequest struct {
	Size      int       `json:"size"`                // Dimension of both operands.
	A         []float64 `json:"a"`                   // Left operand, row-major.
	B         []float64 `json:"b"`                   // Right operand, row-major.
	Algorithm string    `json:"algorithm,omitempty"` // Registered multiplier name; "parallel" when empty.
	LeafSize  int       `json:"leaf_size,omitempty"` // Recursion threshold; server default when 0.
}

// MultiplyResponse is the successful answer to POST /multiply.
type MultiplyResponse struct {
	RequestID string    `json:"request_id"`
	Algorithm string    `json:"algorithm"`
	Size      int       `json:"size"`
	LeafSize  int       `json:"leaf_size"`
	C         []float64 `json:"c"`        // Product, row-major.
	Duration  string    `json:"duration"` // Formatted execution time.
	Cached    bool      `json:"cached"`   // True when served from the product cache.
}

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`             // Short status text.
	Message string `json:"message,omitempty"` // Human-readable detail.
}

// AlgorithmsResponse is the answer to GET /algorithms.
type AlgorithmsResponse struct {
	Algorithms []AlgorithmInfo `json:"algorithms"`
}

// AlgorithmInfo describes one registered multiplier.
type AlgorithmInfo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// HealthResponse is the answer to GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}
