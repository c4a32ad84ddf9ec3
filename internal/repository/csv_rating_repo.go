package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"homophily-study/internal/domain"
)

// CsvRatingRepository implementa RatingRepository sobre ratings.csv.
type CsvRatingRepository struct {
	store *CsvStore
}

func NewCsvRatingRepository(store *CsvStore) *CsvRatingRepository {
	return &CsvRatingRepository{store: store}
}

func (r *CsvRatingRepository) Append(ctx context.Context, rating domain.Rating) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row := []string{
		rating.ParticipantID,
		strconv.Itoa(rating.Phase),
		rating.BotType,
		rating.TopicID,
		strconv.Itoa(rating.Trust),
		strconv.Itoa(rating.Likability),
		strconv.Itoa(rating.Similarity),
		strconv.Itoa(rating.Naturalness),
		strconv.Itoa(rating.Satisfaction),
		escapeContent(rating.OpenResponse),
		rating.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	return r.store.appendRow(RatingsFile, row)
}

func (r *CsvRatingRepository) List(ctx context.Context) ([]domain.Rating, error) {
	r.store.mu.Lock()
	rows, err := r.store.readRows(RatingsFile)
	r.store.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]domain.Rating, 0, len(rows))
	for _, row := range rows {
		if len(row) < len(ratingsHeaders) {
			continue
		}
		phase, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("rating phase %q: %w", row[1], err)
		}
		createdAt, err := parseTimeCell(row[10])
		if err != nil {
			return nil, fmt.Errorf("rating created_at: %w", err)
		}
		rating := domain.Rating{
			ParticipantID: row[0],
			Phase:         phase,
			BotType:       row[2],
			TopicID:       row[3],
			OpenResponse:  unescapeContent(row[9]),
			CreatedAt:     createdAt,
		}
		rating.Trust, _ = strconv.Atoi(row[4])
		rating.Likability, _ = strconv.Atoi(row[5])
		rating.Similarity, _ = strconv.Atoi(row[6])
		rating.Naturalness, _ = strconv.Atoi(row[7])
		rating.Satisfaction, _ = strconv.Atoi(row[8])
		out = append(out, rating)
	}
	return out, nil
}
