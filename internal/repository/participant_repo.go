package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"homophily-study/internal/domain"
)

// ParticipantRepository persiste el registro raiz del estudio.
type ParticipantRepository interface {
	Create(ctx context.Context, p domain.Participant) error
	GetByID(ctx context.Context, id string) (domain.Participant, error)
	// Count devuelve el total de registrados; alimenta la paridad de
	// contrabalanceo.
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]domain.Participant, error)
	// SaveProfile escribe demografia, TIPI, Big Five y asignacion de una vez.
	SaveProfile(ctx context.Context, p domain.Participant) error
	SavePreference(ctx context.Context, id, preferredBot, reason string) error
	// MarkComplete fija completed_at; llamadas repetidas lo sobreescriben.
	MarkComplete(ctx context.Context, id string, at time.Time) error
}

type PgParticipantRepository struct {
	pool *pgxpool.Pool
}

func NewPgParticipantRepository(pool *pgxpool.Pool) *PgParticipantRepository {
	return &PgParticipantRepository{pool: pool}
}

func (r *PgParticipantRepository) Create(ctx context.Context, p domain.Participant) error {
	const query = `
		INSERT INTO participants (id, created_at, study_group)
		VALUES ($1, $2, $3)
	`
	_, err := r.pool.Exec(ctx, query, p.ID, p.CreatedAt, p.Group)
	return err
}

func (r *PgParticipantRepository) GetByID(ctx context.Context, id string) (domain.Participant, error) {
	const query = participantSelect + ` WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	p, err := scanParticipant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Participant{}, ErrNotFound
	}
	return p, err
}

func (r *PgParticipantRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM participants`).Scan(&count)
	return count, err
}

func (r *PgParticipantRepository) List(ctx context.Context) ([]domain.Participant, error) {
	rows, err := r.pool.Query(ctx, participantSelect+` ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PgParticipantRepository) SaveProfile(ctx context.Context, p domain.Participant) error {
	const query = `
		UPDATE participants SET
			is_outlier = $2,
			age = $3, gender = $4, education = $5,
			tipi = $6,
			extraversion = $7, agreeableness = $8, conscientiousness = $9,
			neuroticism = $10, openness = $11,
			interests = $12, communication_style = $13,
			persona_label = $14, similarities = $15, trait_vec = $16
		WHERE id = $1
	`
	tipiJSON, err := json.Marshal(p.TIPI)
	if err != nil {
		return err
	}
	var simJSON []byte
	if p.Similarities != nil {
		if simJSON, err = json.Marshal(p.Similarities); err != nil {
			return err
		}
	}

	var big5 domain.BigFive
	if p.BigFive != nil {
		big5 = *p.BigFive
	}
	vec := big5.Vector()
	traitVec := pgvector.NewVector([]float32{
		float32(vec[0]), float32(vec[1]), float32(vec[2]), float32(vec[3]), float32(vec[4]),
	})

	tag, err := r.pool.Exec(ctx, query,
		p.ID,
		p.IsOutlier,
		p.Age, p.Gender, p.Education,
		tipiJSON,
		big5.Extraversion, big5.Agreeableness, big5.Conscientiousness,
		big5.Neuroticism, big5.Openness,
		p.Interests, p.CommunicationStyle,
		p.PersonaLabel, simJSON, traitVec,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgParticipantRepository) SavePreference(ctx context.Context, id, preferredBot, reason string) error {
	const query = `
		UPDATE participants SET preferred_bot = $2, preference_reason = $3
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, preferredBot, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgParticipantRepository) MarkComplete(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE participants SET completed_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const participantSelect = `
	SELECT id, created_at, completed_at, study_group, is_outlier,
		age, gender, education, tipi,
		extraversion, agreeableness, conscientiousness, neuroticism, openness,
		interests, communication_style, persona_label, similarities,
		preferred_bot, preference_reason
	FROM participants
`

func scanParticipant(row pgx.Row) (domain.Participant, error) {
	var (
		p                                     domain.Participant
		completedAt                           sql.NullTime
		tipiJSON, simJSON                     []byte
		ext, agr, con, neu, opn               sql.NullFloat64
		age, gender, education                sql.NullString
		interests, commStyle                  sql.NullString
		personaLabel, preferred, prefReason   sql.NullString
	)

	err := row.Scan(
		&p.ID, &p.CreatedAt, &completedAt, &p.Group, &p.IsOutlier,
		&age, &gender, &education, &tipiJSON,
		&ext, &agr, &con, &neu, &opn,
		&interests, &commStyle, &personaLabel, &simJSON,
		&preferred, &prefReason,
	)
	if err != nil {
		return domain.Participant{}, err
	}

	if completedAt.Valid {
		t := completedAt.Time
		p.CompletedAt = &t
	}
	p.Age = age.String
	p.Gender = gender.String
	p.Education = education.String
	p.Interests = interests.String
	p.CommunicationStyle = commStyle.String
	p.PersonaLabel = personaLabel.String
	p.PreferredBot = preferred.String
	p.PreferenceReason = prefReason.String

	if len(tipiJSON) > 0 {
		if err := json.Unmarshal(tipiJSON, &p.TIPI); err != nil {
			return domain.Participant{}, err
		}
	}
	if len(simJSON) > 0 {
		if err := json.Unmarshal(simJSON, &p.Similarities); err != nil {
			return domain.Participant{}, err
		}
	}
	if ext.Valid {
		p.BigFive = &domain.BigFive{
			Extraversion:      ext.Float64,
			Agreeableness:     agr.Float64,
			Conscientiousness: con.Float64,
			Neuroticism:       neu.Float64,
			Openness:          opn.Float64,
		}
	}
	return p, nil
}
