package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"homophily-study/internal/domain"
)

// Indices de columna de participants.csv.
const (
	colID = iota
	colCreatedAt
	colCompletedAt
	colGroup
	colIsOutlier
	colAge
	colGender
	colEducation
	colTipi1 // tipi_1..tipi_10 son contiguos
	colExtraversion = iota + 9
	colAgreeableness
	colConscientiousness
	colNeuroticism
	colOpenness
	colInterests
	colCommunicationStyle
	colPreferredBot
	colPreferenceReason
	colPersonaLabel
	colSimilarities
)

// CsvParticipantRepository implementa ParticipantRepository sobre
// participants.csv. Los appends agregan filas; las actualizaciones de campo
// reescriben el archivo completo.
type CsvParticipantRepository struct {
	store *CsvStore
}

func NewCsvParticipantRepository(store *CsvStore) *CsvParticipantRepository {
	return &CsvParticipantRepository{store: store}
}

func (r *CsvParticipantRepository) Create(ctx context.Context, p domain.Participant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row := make([]string, len(participantsHeaders))
	row[colID] = p.ID
	row[colCreatedAt] = p.CreatedAt.UTC().Format(time.RFC3339Nano)
	row[colGroup] = p.Group
	return r.store.appendRow(ParticipantsFile, row)
}

func (r *CsvParticipantRepository) GetByID(ctx context.Context, id string) (domain.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := r.store.readRows(ParticipantsFile)
	if err != nil {
		return domain.Participant{}, err
	}
	for _, row := range rows {
		if len(row) > colID && row[colID] == id {
			return decodeParticipant(row)
		}
	}
	return domain.Participant{}, ErrNotFound
}

func (r *CsvParticipantRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := r.store.readRows(ParticipantsFile)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (r *CsvParticipantRepository) List(ctx context.Context) ([]domain.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := r.store.readRows(ParticipantsFile)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Participant, 0, len(rows))
	for _, row := range rows {
		p, err := decodeParticipant(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *CsvParticipantRepository) SaveProfile(ctx context.Context, p domain.Participant) error {
	return r.update(p.ID, func(row []string) error {
		row[colIsOutlier] = strconv.FormatBool(p.IsOutlier)
		row[colAge] = p.Age
		row[colGender] = p.Gender
		row[colEducation] = p.Education
		for i := 1; i <= 10; i++ {
			if v, ok := p.TIPI[fmt.Sprintf("tipi_%d", i)]; ok {
				row[colTipi1+i-1] = strconv.Itoa(v)
			}
		}
		if p.BigFive != nil {
			row[colExtraversion] = formatScore(p.BigFive.Extraversion)
			row[colAgreeableness] = formatScore(p.BigFive.Agreeableness)
			row[colConscientiousness] = formatScore(p.BigFive.Conscientiousness)
			row[colNeuroticism] = formatScore(p.BigFive.Neuroticism)
			row[colOpenness] = formatScore(p.BigFive.Openness)
		}
		row[colInterests] = p.Interests
		row[colCommunicationStyle] = p.CommunicationStyle
		row[colPersonaLabel] = p.PersonaLabel
		if p.Similarities != nil {
			sim, err := json.Marshal(p.Similarities)
			if err != nil {
				return err
			}
			row[colSimilarities] = string(sim)
		}
		return nil
	})
}

func (r *CsvParticipantRepository) SavePreference(ctx context.Context, id, preferredBot, reason string) error {
	return r.update(id, func(row []string) error {
		row[colPreferredBot] = preferredBot
		row[colPreferenceReason] = escapeContent(reason)
		return nil
	})
}

func (r *CsvParticipantRepository) MarkComplete(ctx context.Context, id string, at time.Time) error {
	return r.update(id, func(row []string) error {
		row[colCompletedAt] = at.UTC().Format(time.RFC3339Nano)
		return nil
	})
}

func (r *CsvParticipantRepository) update(id string, apply func(row []string) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows, err := r.store.readRows(ParticipantsFile)
	if err != nil {
		return err
	}
	found := false
	for i, row := range rows {
		if len(row) > colID && row[colID] == id {
			// Filas de versiones previas del archivo pueden ser cortas.
			if len(row) < len(participantsHeaders) {
				padded := make([]string, len(participantsHeaders))
				copy(padded, row)
				row = padded
			}
			if err := apply(row); err != nil {
				return err
			}
			rows[i] = row
			found = true
		}
	}
	if !found {
		return ErrNotFound
	}
	return r.store.rewrite(ParticipantsFile, participantsHeaders, rows)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func decodeParticipant(row []string) (domain.Participant, error) {
	if len(row) < len(participantsHeaders) {
		padded := make([]string, len(participantsHeaders))
		copy(padded, row)
		row = padded
	}

	p := domain.Participant{
		ID:                 row[colID],
		Group:              row[colGroup],
		Age:                row[colAge],
		Gender:             row[colGender],
		Education:          row[colEducation],
		Interests:          row[colInterests],
		CommunicationStyle: row[colCommunicationStyle],
		PersonaLabel:       row[colPersonaLabel],
		PreferredBot:       row[colPreferredBot],
		PreferenceReason:   unescapeContent(row[colPreferenceReason]),
	}
	p.IsOutlier = row[colIsOutlier] == "true"

	var err error
	if p.CreatedAt, err = parseTimeCell(row[colCreatedAt]); err != nil {
		return domain.Participant{}, fmt.Errorf("participant %s created_at: %w", p.ID, err)
	}
	if row[colCompletedAt] != "" {
		t, err := parseTimeCell(row[colCompletedAt])
		if err != nil {
			return domain.Participant{}, fmt.Errorf("participant %s completed_at: %w", p.ID, err)
		}
		p.CompletedAt = &t
	}

	for i := 1; i <= 10; i++ {
		cell := row[colTipi1+i-1]
		if cell == "" {
			continue
		}
		v, err := strconv.Atoi(cell)
		if err != nil {
			continue
		}
		if p.TIPI == nil {
			p.TIPI = make(map[string]int, 10)
		}
		p.TIPI[fmt.Sprintf("tipi_%d", i)] = v
	}

	if row[colExtraversion] != "" {
		big5 := domain.BigFive{}
		big5.Extraversion, _ = strconv.ParseFloat(row[colExtraversion], 64)
		big5.Agreeableness, _ = strconv.ParseFloat(row[colAgreeableness], 64)
		big5.Conscientiousness, _ = strconv.ParseFloat(row[colConscientiousness], 64)
		big5.Neuroticism, _ = strconv.ParseFloat(row[colNeuroticism], 64)
		big5.Openness, _ = strconv.ParseFloat(row[colOpenness], 64)
		p.BigFive = &big5
	}

	if row[colSimilarities] != "" {
		if err := json.Unmarshal([]byte(row[colSimilarities]), &p.Similarities); err != nil {
			return domain.Participant{}, fmt.Errorf("participant %s similarities: %w", p.ID, err)
		}
	}
	return p, nil
}

func parseTimeCell(cell string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, cell)
}
