package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"homophily-study/internal/domain"
)

// MessageRepository es el log append-only de mensajes por (participante,
// fase). Nunca reordena ni deduplica.
type MessageRepository interface {
	Append(ctx context.Context, m domain.Message) error
	// ListByPhase devuelve el transcript completo de la fase en orden de
	// insercion, listo para enviarse al LLM.
	ListByPhase(ctx context.Context, participantID string, phase int) ([]domain.Message, error)
	// CountUserTurns cuenta solo turnos con rol "user".
	CountUserTurns(ctx context.Context, participantID string, phase int) (int, error)
	ListAll(ctx context.Context) ([]domain.Message, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Append(ctx context.Context, m domain.Message) error {
	const query = `
		INSERT INTO messages (id, participant_id, phase, role, content, bot_type, topic, model, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, query,
		m.ID, m.ParticipantID, m.Phase, m.Role, m.Content,
		m.BotType, m.TopicID, m.Model, m.CreatedAt,
	)
	return err
}

func (r *PgMessageRepository) ListByPhase(ctx context.Context, participantID string, phase int) ([]domain.Message, error) {
	const query = messageSelect + `
		WHERE participant_id = $1 AND phase = $2
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, participantID, phase)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (r *PgMessageRepository) CountUserTurns(ctx context.Context, participantID string, phase int) (int, error) {
	const query = `
		SELECT COUNT(*) FROM messages
		WHERE participant_id = $1 AND phase = $2 AND role = 'user'
	`
	var count int
	err := r.pool.QueryRow(ctx, query, participantID, phase).Scan(&count)
	return count, err
}

func (r *PgMessageRepository) ListAll(ctx context.Context) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, messageSelect+` ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

const messageSelect = `
	SELECT id, participant_id, phase, role, content, bot_type, topic, model, created_at
	FROM messages
`

func collectMessages(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]domain.Message, error) {
	var out []domain.Message
	for rows.Next() {
		var (
			m                       domain.Message
			botType, topicID, model sql.NullString
		)
		if err := rows.Scan(
			&m.ID, &m.ParticipantID, &m.Phase, &m.Role, &m.Content,
			&botType, &topicID, &model, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		m.BotType = botType.String
		m.TopicID = topicID.String
		m.Model = model.String
		out = append(out, m)
	}
	return out, rows.Err()
}
