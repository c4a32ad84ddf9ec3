package domain

// Topic es uno de los dos temas de debate contrabalanceados.
type Topic struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Short string `json:"short" yaml:"short"`
}

// Centroid es un punto fijo de referencia en el espacio de rasgos que
// representa una persona sintetica arquetipica. Stability es estabilidad
// emocional (8 - neuroticismo) para comparar contra BigFive.Vector.
type Centroid struct {
	Label             string  `json:"label" yaml:"label"`
	Extraversion      float64 `json:"extraversion" yaml:"extraversion"`
	Agreeableness     float64 `json:"agreeableness" yaml:"agreeableness"`
	Conscientiousness float64 `json:"conscientiousness" yaml:"conscientiousness"`
	Stability         float64 `json:"stability" yaml:"stability"`
	Openness          float64 `json:"openness" yaml:"openness"`
}

// Vector devuelve [E, A, C, ES, O].
func (c Centroid) Vector() [5]float64 {
	return [5]float64{c.Extraversion, c.Agreeableness, c.Conscientiousness, c.Stability, c.Openness}
}

// Traits expone los rasgos de la persona en escala OCEAN 1-7 tal como se
// interpolan en el prompt (N = 8 - estabilidad).
func (c Centroid) Traits() map[string]float64 {
	return map[string]float64{
		"O": c.Openness,
		"C": c.Conscientiousness,
		"E": c.Extraversion,
		"A": c.Agreeableness,
		"N": 8 - c.Stability,
	}
}
