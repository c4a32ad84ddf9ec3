package service

import (
	"math"
	"math/rand"

	"homophily-study/internal/domain"
)

// Ancho de la escala 1-7; normaliza la distancia media absoluta a [0,1].
const scaleWidth = 6.0

// AssignmentPolicy decide la condicion de un participante a partir de su
// grupo de contrabalanceo y sus Big Five. Ambas politicas observadas en la
// evolucion del estudio se soportan como implementaciones intercambiables.
type AssignmentPolicy interface {
	Name() string
	Assign(group string, scores domain.BigFive) domain.Assignment
}

// GroupForSequence asigna grupo por paridad de la secuencia de registro:
// par -> A, impar -> B.
func GroupForSequence(seq int64) string {
	if seq%2 == 0 {
		return domain.GroupA
	}
	return domain.GroupB
}

// CounterbalancePolicy replica el mapeo fijo por grupo:
//
//	Grupo A: Chat1 = high_match + tema A, Chat2 = low_match + tema B
//	Grupo B: Chat1 = low_match + tema B, Chat2 = high_match + tema A
//
// Si el participante es outlier (E o A bajo), las etiquetas high/low se
// invierten dentro del orden del grupo: el outlier igual ve ambas
// condiciones, en orden de saliencia invertido.
type CounterbalancePolicy struct {
	TopicA domain.Topic
	TopicB domain.Topic
}

func (p CounterbalancePolicy) Name() string { return "counterbalance" }

func (p CounterbalancePolicy) Assign(group string, scores domain.BigFive) domain.Assignment {
	outlier := IsOutlier(scores)

	matched, other := domain.BotHighMatch, domain.BotLowMatch
	if outlier {
		matched, other = other, matched
	}

	a := domain.Assignment{
		Group:     group,
		IsOutlier: outlier,
		BigFive:   scores,
	}
	if group == domain.GroupB {
		a.Chat1 = domain.PhaseAssignment{BotType: other, Topic: p.TopicB}
		a.Chat2 = domain.PhaseAssignment{BotType: matched, Topic: p.TopicA}
	} else {
		a.Chat1 = domain.PhaseAssignment{BotType: matched, Topic: p.TopicA}
		a.Chat2 = domain.PhaseAssignment{BotType: other, Topic: p.TopicB}
	}
	return a
}

// SimilarityPolicy elige el centroide de persona mas parecido al perfil y
// contrapone esa persona a la persona neutra ("default"). El orden de fases
// lo decide una moneda justa y el orden de temas se sortea aparte, de modo
// que los efectos de orden queden balanceados sobre la poblacion.
type SimilarityPolicy struct {
	Centroids []domain.Centroid
	TopicA    domain.Topic
	TopicB    domain.Topic
	// Rand inyectable para tests; nil usa el generador global.
	Rand *rand.Rand
}

func (p SimilarityPolicy) Name() string { return "similarity" }

func (p SimilarityPolicy) Assign(group string, scores domain.BigFive) domain.Assignment {
	label, similarities := p.closestCentroid(scores)

	a := domain.Assignment{
		Group:        group,
		IsOutlier:    IsOutlier(scores),
		BigFive:      scores,
		PersonaLabel: label,
		Similarities: similarities,
	}

	first, second := label, domain.PersonaDefault
	if p.coin() {
		first, second = second, first
	}
	topic1, topic2 := p.TopicA, p.TopicB
	if p.coin() {
		topic1, topic2 = topic2, topic1
	}
	a.Chat1 = domain.PhaseAssignment{BotType: first, Topic: topic1}
	a.Chat2 = domain.PhaseAssignment{BotType: second, Topic: topic2}
	return a
}

// closestCentroid devuelve la etiqueta de maxima similitud y el mapa
// completo para exportar. Empates los gana el centroide declarado primero.
func (p SimilarityPolicy) closestCentroid(scores domain.BigFive) (string, map[string]float64) {
	similarities := make(map[string]float64, len(p.Centroids))
	best := ""
	bestSim := math.Inf(-1)
	for _, c := range p.Centroids {
		sim := Similarity(scores, c)
		similarities[c.Label] = sim
		if sim > bestSim {
			best, bestSim = c.Label, sim
		}
	}
	return best, similarities
}

func (p SimilarityPolicy) coin() bool {
	if p.Rand != nil {
		return p.Rand.Intn(2) == 0
	}
	return rand.Intn(2) == 0
}

// Similarity es 1 menos la distancia media absoluta normalizada entre el
// vector de rasgos [E, A, C, ES, O] y el centroide. Un perfil identico al
// centroide da exactamente 1.0.
func Similarity(scores domain.BigFive, c domain.Centroid) float64 {
	v, mu := scores.Vector(), c.Vector()
	var dist float64
	for i := range v {
		dist += math.Abs(v[i]-mu[i]) / scaleWidth
	}
	return 1 - dist/float64(len(v))
}
