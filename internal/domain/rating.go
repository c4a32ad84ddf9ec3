package domain

import "time"

// Rating es una fila por (participante, fase). No es idempotente: cada
// llamada agrega una fila nueva.
type Rating struct {
	ParticipantID string    `json:"participant_id"`
	Phase         int       `json:"phase"`
	BotType       string    `json:"bot_type"`
	TopicID       string    `json:"topic"`
	Trust         int       `json:"trust"`
	Likability    int       `json:"likability"`
	Similarity    int       `json:"similarity"`
	Naturalness   int       `json:"naturalness"`
	Satisfaction  int       `json:"satisfaction"`
	OpenResponse  string    `json:"open_response,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
