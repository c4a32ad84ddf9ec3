package service

import "homophily-study/internal/domain"

// Puntaje neutro que se asume para items faltantes del TIPI.
const neutralItemScore = 4

// Umbral de "bajo" en la escala 1-7 para la regla de outlier.
const OutlierThreshold = 3.5

// ComputeBigFive deriva los cinco rasgos de las diez respuestas del TIPI.
// Tabla fija (escala 1-7, R = puntaje invertido 8-x):
//
//	Extraversion:      tipi_1, tipi_6R
//	Agreeableness:     tipi_2R, tipi_7
//	Conscientiousness: tipi_3, tipi_8R
//	Neuroticism:       tipi_4, tipi_9R
//	Openness:          tipi_5, tipi_10R
//
// Cada rasgo es el promedio simple de sus dos items. Los items faltantes
// valen 4; los fuera de rango no se validan (comportamiento observado).
func ComputeBigFive(answers map[string]int) domain.BigFive {
	item := func(key string) float64 {
		if v, ok := answers[key]; ok {
			return float64(v)
		}
		return neutralItemScore
	}
	rev := func(key string) float64 { return 8 - item(key) }

	return domain.BigFive{
		Extraversion:      (item("tipi_1") + rev("tipi_6")) / 2,
		Agreeableness:     (rev("tipi_2") + item("tipi_7")) / 2,
		Conscientiousness: (item("tipi_3") + rev("tipi_8")) / 2,
		Neuroticism:       (item("tipi_4") + rev("tipi_9")) / 2,
		Openness:          (item("tipi_5") + rev("tipi_10")) / 2,
	}
}

// IsOutlier marca perfiles de baja extraversion o baja amabilidad; en modo
// counterbalance su asignacion high/low match se invierte.
func IsOutlier(scores domain.BigFive) bool {
	return scores.Extraversion < OutlierThreshold || scores.Agreeableness < OutlierThreshold
}
