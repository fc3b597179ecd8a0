package websocket

import (
	"encoding/json"
	"time"
)

// Scope - кому адресован кадр ленты.
type Scope string

const (
	// ScopeBroadcast - всем открытым дашбордам.
	ScopeBroadcast Scope = "broadcast"
	// ScopePersonal - только соединениям одного пользователя (выдача ему оборудования, лицензии).
	ScopePersonal Scope = "personal"
)

// Envelope - кадр ленты. По Type дашборд понимает, что лежит в Payload.
type Envelope struct {
	Type      string      `json:"type"`
	Scope     Scope       `json:"scope"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

func encodeFrame(messageType string, scope Scope, payload interface{}) ([]byte, error) {
	return json.Marshal(Envelope{
		Type:      messageType,
		Scope:     scope,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}
