package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"homophily-study/internal/domain"
)

// RatingQuestion es una pregunta Likert del cuestionario post-conversacion.
type RatingQuestion struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Experiment agrupa los parametros publicos del experimento. Los defaults
// compilados replican el protocolo del estudio; un archivo YAML opcional
// puede sobreescribirlos campo a campo.
type Experiment struct {
	// Turnos de usuario requeridos por fase antes de calificar.
	MessagesPerBot int `yaml:"messages_per_bot"`

	TopicA domain.Topic `yaml:"topic_a"`
	TopicB domain.Topic `yaml:"topic_b"`

	// Centroides de persona en orden declarado; el orden es el desempate
	// deterministico de la seleccion por similitud.
	Centroids []domain.Centroid `yaml:"centroids"`

	TIPIItems       []string         `yaml:"tipi_items"`
	RatingQuestions []RatingQuestion `yaml:"rating_questions"`
}

// DefaultExperiment devuelve la configuracion del protocolo original.
func DefaultExperiment() *Experiment {
	return &Experiment{
		MessagesPerBot: 6,
		TopicA: domain.Topic{
			ID:    "friends",
			Title: "Is it better to have a few best friends or many casual acquaintances?",
			Short: "Friends",
		},
		TopicB: domain.Topic{
			ID:    "specialization",
			Title: "Is it better to know everything a bit or specialize in one direction",
			Short: "Specialization",
		},
		Centroids: []domain.Centroid{
			{Label: "A", Extraversion: 5.5, Agreeableness: 6.0, Conscientiousness: 5.0, Stability: 5.5, Openness: 5.0},
			{Label: "C", Extraversion: 4.5, Agreeableness: 5.0, Conscientiousness: 6.5, Stability: 5.5, Openness: 4.5},
			{Label: "O", Extraversion: 5.0, Agreeableness: 5.0, Conscientiousness: 4.5, Stability: 5.0, Openness: 6.5},
		},
		// Escala TIPI validada: no modificar los items.
		TIPIItems: []string{
			"Extraverted, enthusiastic",
			"Critical, quarrelsome",
			"Dependable, self-disciplined",
			"Anxious, easily upset",
			"Open to new experiences, complex",
			"Reserved, quiet",
			"Sympathetic, warm",
			"Disorganized, careless",
			"Calm, emotionally stable",
			"Conventional, uncreative",
		},
		RatingQuestions: []RatingQuestion{
			{ID: "trust", Text: "I would trust this chatbot to help me"},
			{ID: "likability", Text: "I found this chatbot likeable"},
			{ID: "similarity", Text: "This chatbot seemed similar to me"},
			{ID: "naturalness", Text: "The conversation felt natural"},
			{ID: "satisfaction", Text: "I was satisfied with this conversation"},
		},
	}
}

// LoadExperiment carga los defaults y, si path no es vacio, aplica el
// overlay YAML encima.
func LoadExperiment(path string) (*Experiment, error) {
	exp := DefaultExperiment()
	if path == "" {
		return exp, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiment file: %w", err)
	}
	if err := yaml.Unmarshal(raw, exp); err != nil {
		return nil, fmt.Errorf("parse experiment file: %w", err)
	}
	if exp.MessagesPerBot <= 0 {
		exp.MessagesPerBot = DefaultExperiment().MessagesPerBot
	}
	if len(exp.Centroids) == 0 {
		exp.Centroids = DefaultExperiment().Centroids
	}
	return exp, nil
}

// CentroidByLabel busca un centroide declarado; ok es false si no existe.
func (e *Experiment) CentroidByLabel(label string) (domain.Centroid, bool) {
	for _, c := range e.Centroids {
		if c.Label == label {
			return c, true
		}
	}
	return domain.Centroid{}, false
}
