package repository

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"homophily-study/internal/domain"
)

// RatingRepository apendea calificaciones post-conversacion. Cada llamada
// escribe una fila nueva (sin idempotencia, por contrato).
type RatingRepository interface {
	Append(ctx context.Context, r domain.Rating) error
	List(ctx context.Context) ([]domain.Rating, error)
}

type PgRatingRepository struct {
	pool *pgxpool.Pool
}

func NewPgRatingRepository(pool *pgxpool.Pool) *PgRatingRepository {
	return &PgRatingRepository{pool: pool}
}

func (r *PgRatingRepository) Append(ctx context.Context, rating domain.Rating) error {
	const query = `
		INSERT INTO ratings (participant_id, phase, bot_type, topic,
			trust, likability, similarity, naturalness, satisfaction,
			open_response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		rating.ParticipantID, rating.Phase, rating.BotType, rating.TopicID,
		rating.Trust, rating.Likability, rating.Similarity,
		rating.Naturalness, rating.Satisfaction,
		rating.OpenResponse, rating.CreatedAt,
	)
	return err
}

func (r *PgRatingRepository) List(ctx context.Context) ([]domain.Rating, error) {
	const query = `
		SELECT participant_id, phase, bot_type, topic,
			trust, likability, similarity, naturalness, satisfaction,
			open_response, created_at
		FROM ratings
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Rating
	for rows.Next() {
		var (
			rating       domain.Rating
			openResponse sql.NullString
		)
		if err := rows.Scan(
			&rating.ParticipantID, &rating.Phase, &rating.BotType, &rating.TopicID,
			&rating.Trust, &rating.Likability, &rating.Similarity,
			&rating.Naturalness, &rating.Satisfaction,
			&openResponse, &rating.CreatedAt,
		); err != nil {
			return nil, err
		}
		rating.OpenResponse = openResponse.String
		out = append(out, rating)
	}
	return out, rows.Err()
}
