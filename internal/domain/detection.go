package domain

// DetectionResult es la respuesta del proveedor NLU para un texto, evento o audio.
// IntentName y Confidence solo se usan para logging en el webhook SMS.
type DetectionResult struct {
	ResponseID      string   `json:"response_id,omitempty"`
	QueryText       string   `json:"query_text"`
	FulfillmentText string   `json:"fulfillment_text"`
	Messages        []string `json:"messages,omitempty"`
	IntentName      string   `json:"intent_name"`
	Confidence      float32  `json:"confidence"`
}
