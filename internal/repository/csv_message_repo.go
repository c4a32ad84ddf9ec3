package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"homophily-study/internal/domain"
)

// CsvMessageRepository implementa MessageRepository sobre messages.csv.
// Solo apendea: el orden del archivo es el orden de conversacion.
type CsvMessageRepository struct {
	store *CsvStore
}

func NewCsvMessageRepository(store *CsvStore) *CsvMessageRepository {
	return &CsvMessageRepository{store: store}
}

func (r *CsvMessageRepository) Append(ctx context.Context, m domain.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row := []string{
		m.ParticipantID,
		strconv.Itoa(m.Phase),
		m.Role,
		escapeContent(m.Content),
		m.BotType,
		m.TopicID,
		m.Model,
		m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	return r.store.appendRow(MessagesFile, row)
}

func (r *CsvMessageRepository) ListByPhase(ctx context.Context, participantID string, phase int) ([]domain.Message, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Message
	for _, m := range all {
		if m.ParticipantID == participantID && m.Phase == phase {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *CsvMessageRepository) CountUserTurns(ctx context.Context, participantID string, phase int) (int, error) {
	msgs, err := r.ListByPhase(ctx, participantID, phase)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, m := range msgs {
		if m.Role == domain.RoleUser {
			count++
		}
	}
	return count, nil
}

func (r *CsvMessageRepository) ListAll(ctx context.Context) ([]domain.Message, error) {
	r.store.mu.Lock()
	rows, err := r.store.readRows(MessagesFile)
	r.store.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		if len(row) < len(messagesHeaders) {
			continue
		}
		phase, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("message phase %q: %w", row[1], err)
		}
		createdAt, err := parseTimeCell(row[7])
		if err != nil {
			return nil, fmt.Errorf("message created_at: %w", err)
		}
		out = append(out, domain.Message{
			ParticipantID: row[0],
			Phase:         phase,
			Role:          row[2],
			Content:       unescapeContent(row[3]),
			BotType:       row[4],
			TopicID:       row[5],
			Model:         row[6],
			CreatedAt:     createdAt,
		})
	}
	return out, nil
}
