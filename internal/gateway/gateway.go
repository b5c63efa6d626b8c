// Package gateway is the sole channel to the NG12 decision-support service.
//
// The service owns retrieval, model invocation and assessment logic; this
// package only speaks its four-operation HTTP contract and normalizes every
// failure into a single error kind (*RemoteError) so callers never need to
// distinguish transport failures from application failures.
package gateway

import "encoding/json"

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Citation points into source material grounding an assistant statement.
// Immutable once received. Chunk is the stable identity for list rendering;
// it is only unique enough within a single citation list, never globally.
type Citation struct {
	Source  *string `json:"source,omitempty"`
	Page    int     `json:"page"`
	Chunk   string  `json:"chunk_id"`
	Excerpt *string `json:"excerpt,omitempty"`
}

// Turn is one message in a conversation. User turns carry no citations;
// an assistant turn's citations ground that specific answer only.
type Turn struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Citations []Citation `json:"citations"`
}

// ChatReply is the service's answer to a single chat message.
type ChatReply struct {
	SessionID string     `json:"session_id"`
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// AssessResult is one structured assessment for a patient. Each invocation
// produces a fresh result; results never merge with prior ones.
type AssessResult struct {
	PatientID      string          `json:"patient_id"`
	Assessment     string          `json:"assessment"`
	Reasoning      string          `json:"reasoning"`
	Confidence     *float64        `json:"confidence,omitempty"`
	Citations      []Citation      `json:"citations"`
	RetrievalDebug json.RawMessage `json:"retrieval_debug,omitempty"`
}

type assessRequest struct {
	PatientID string `json:"patient_id"`
	TopK      int    `json:"top_k"`
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	TopK      int    `json:"top_k"`
}

type historyResponse struct {
	SessionID string `json:"session_id"`
	History   []Turn `json:"history"`
}

type clearResponse struct {
	SessionID string `json:"session_id"`
	Cleared   bool   `json:"cleared"`
}
