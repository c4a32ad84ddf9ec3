package domain

// Etiquetas de bot del modo counterbalance y la persona neutra del modo
// similarity.
const (
	BotHighMatch   = "high_match"
	BotLowMatch    = "low_match"
	PersonaDefault = "default"
)

// PhaseAssignment es el par (persona, tema) activo durante una fase.
type PhaseAssignment struct {
	BotType string `json:"bot_type"`
	Topic   Topic  `json:"topic"`
}

// Assignment es el registro de condicion de un participante: se computa una
// vez al enviar el perfil y es inmutable despues.
type Assignment struct {
	Group        string             `json:"group"`
	IsOutlier    bool               `json:"is_outlier"`
	BigFive      BigFive            `json:"big_five"`
	PersonaLabel string             `json:"persona_label,omitempty"`
	Similarities map[string]float64 `json:"similarities,omitempty"`
	Chat1        PhaseAssignment    `json:"chat1"`
	Chat2        PhaseAssignment    `json:"chat2"`
}
