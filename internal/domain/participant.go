package domain

import "time"

// Grupos de contrabalanceo. La paridad del contador de registro decide el grupo.
const (
	GroupA = "A"
	GroupB = "B"
)

// Participant es el registro raiz del estudio. Los campos de perfil se
// escriben una sola vez al enviar el cuestionario; los de asignacion una
// sola vez al asignar condicion; completed_at al terminar.
type Participant struct {
	ID          string     `json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Group     string `json:"group"`
	IsOutlier bool   `json:"is_outlier"`

	// Demografia autoreportada (texto libre del formulario).
	Age       string `json:"age,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Education string `json:"education,omitempty"`

	// Respuestas crudas del TIPI (tipi_1..tipi_10, escala 1-7).
	TIPI map[string]int `json:"tipi,omitempty"`

	// Big Five derivados del TIPI.
	BigFive *BigFive `json:"big_five,omitempty"`

	// Persona elegida y similitudes por centroide (solo modo similarity).
	PersonaLabel string             `json:"persona_label,omitempty"`
	Similarities map[string]float64 `json:"similarities,omitempty"`

	Interests          string `json:"interests,omitempty"`
	CommunicationStyle string `json:"communication_style,omitempty"`

	// Comparacion final entre ambos bots.
	PreferredBot     string `json:"preferred_bot,omitempty"`
	PreferenceReason string `json:"preference_reason,omitempty"`
}
