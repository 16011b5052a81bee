package domain

import "time"

// InboundMessage representa un SMS entrante recibido por webhook.
type InboundMessage struct {
	SID  string `json:"message_sid,omitempty"`
	From string `json:"from"`
	Body string `json:"body"`
}

// OutboundMessage es un SMS saliente enviado por la API REST del proveedor.
type OutboundMessage struct {
	To             string `json:"to"`
	Body           string `json:"body"`
	StatusCallback string `json:"status_callback,omitempty"`
}

// Reply es el texto que se devuelve dentro del sobre TwiML.
type Reply struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
	Cached   bool   `json:"cached"`
}

// DeliveryStatus es el último estado conocido de un mensaje saliente.
type DeliveryStatus struct {
	MessageSID string    `json:"message_sid"`
	Status     string    `json:"status"`
	ErrorCode  string    `json:"error_code,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}
