package domain

import "time"

// Roles de los turnos de conversacion.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message pertenece a exactamente un par (participante, fase). Append-only;
// el orden dentro de la fase es el orden de creacion.
type Message struct {
	ID            string    `json:"id,omitempty"`
	ParticipantID string    `json:"participant_id"`
	Phase         int       `json:"phase"`
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	BotType       string    `json:"bot_type,omitempty"`
	TopicID       string    `json:"topic,omitempty"`
	Model         string    `json:"model,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ChatTurn es el par rol/contenido que se envia directo al LLM.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
