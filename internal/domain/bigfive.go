package domain

// BigFive contiene los cinco rasgos en escala 1-7, cada uno el promedio de
// dos items del TIPI (uno invertido).
type BigFive struct {
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Neuroticism       float64 `json:"neuroticism"`
	Openness          float64 `json:"openness"`
}

// Vector devuelve [E, A, C, ES, O] con neuroticismo invertido a estabilidad
// emocional (8 - N), el mismo espacio en que se definen los centroides.
func (b BigFive) Vector() [5]float64 {
	return [5]float64{
		b.Extraversion,
		b.Agreeableness,
		b.Conscientiousness,
		8 - b.Neuroticism,
		b.Openness,
	}
}
