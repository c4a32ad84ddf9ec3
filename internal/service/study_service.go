package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"homophily-study/internal/domain"
	"homophily-study/internal/repository"
)

var ErrInvalidParticipant = errors.New("invalid participant id")

// StudyService orquesta el ciclo de vida del participante: registro con
// contrabalanceo, perfil y asignacion, calificaciones, preferencia final,
// cierre y export.
type StudyService struct {
	logger       *zap.Logger
	participants repository.ParticipantRepository
	messages     repository.MessageRepository
	ratings      repository.RatingRepository
	counter      repository.ParticipantCounter
	policy       AssignmentPolicy

	// Serializa leer-contador + apendear-participante: dos registros
	// concurrentes no deben computar la misma paridad.
	regMu sync.Mutex
}

func NewStudyService(
	logger *zap.Logger,
	participants repository.ParticipantRepository,
	messages repository.MessageRepository,
	ratings repository.RatingRepository,
	counter repository.ParticipantCounter,
	policy AssignmentPolicy,
) *StudyService {
	return &StudyService{
		logger:       logger,
		participants: participants,
		messages:     messages,
		ratings:      ratings,
		counter:      counter,
		policy:       policy,
	}
}

// Register crea un participante nuevo con grupo por paridad del contador.
func (s *StudyService) Register(ctx context.Context) (domain.Participant, error) {
	s.regMu.Lock()
	defer s.regMu.Unlock()

	seq, err := s.counter.Next(ctx)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("participant counter: %w", err)
	}

	p := domain.Participant{
		ID:        uuid.NewString()[:8],
		CreatedAt: time.Now().UTC(),
		Group:     GroupForSequence(seq),
	}
	if err := s.participants.Create(ctx, p); err != nil {
		return domain.Participant{}, fmt.Errorf("create participant: %w", err)
	}
	s.logger.Info("participant registered",
		zap.String("participant_id", p.ID),
		zap.String("group", p.Group),
		zap.Int64("sequence", seq),
	)
	return p, nil
}

// ProfileSubmission es el cuestionario inicial ya tipado.
type ProfileSubmission struct {
	Age                string
	Gender             string
	Education          string
	Interests          string
	CommunicationStyle string
	// Respuestas tipi_1..tipi_10; las faltantes valen 4 al computar.
	TIPI map[string]int
}

// SubmitProfile computa Big Five, corre la politica de asignacion y persiste
// perfil + condicion de una vez. Los campos de rasgos se escriben una sola
// vez por participante.
func (s *StudyService) SubmitProfile(ctx context.Context, participantID string, sub ProfileSubmission) (domain.Assignment, error) {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return domain.Assignment{}, ErrInvalidParticipant
	}

	p, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return domain.Assignment{}, err
	}

	scores := ComputeBigFive(sub.TIPI)
	assignment := s.policy.Assign(p.Group, scores)

	p.IsOutlier = assignment.IsOutlier
	p.Age = sub.Age
	p.Gender = sub.Gender
	p.Education = sub.Education
	p.Interests = sub.Interests
	p.CommunicationStyle = sub.CommunicationStyle
	p.TIPI = sub.TIPI
	p.BigFive = &scores
	p.PersonaLabel = assignment.PersonaLabel
	p.Similarities = assignment.Similarities

	if err := s.participants.SaveProfile(ctx, p); err != nil {
		return domain.Assignment{}, fmt.Errorf("save profile: %w", err)
	}
	s.logger.Info("profile saved",
		zap.String("participant_id", p.ID),
		zap.Bool("is_outlier", assignment.IsOutlier),
		zap.String("persona", assignment.PersonaLabel),
	)
	return assignment, nil
}

// RecordRating apendea una calificacion. Llamarla dos veces para la misma
// fase produce dos filas: el caller debe llamarla a lo sumo una vez por fase.
func (s *StudyService) RecordRating(ctx context.Context, rating domain.Rating) error {
	rating.ParticipantID = strings.TrimSpace(rating.ParticipantID)
	if rating.ParticipantID == "" {
		return ErrInvalidParticipant
	}
	if rating.Phase == 0 {
		rating.Phase = 1
	}
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}
	return s.ratings.Append(ctx, rating)
}

// SavePreference registra cual de los dos bots prefirio el participante.
func (s *StudyService) SavePreference(ctx context.Context, participantID, preferredBot, reason string) error {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return ErrInvalidParticipant
	}
	return s.participants.SavePreference(ctx, participantID, preferredBot, reason)
}

// MarkComplete fija completed_at; repetirla sobreescribe el timestamp.
func (s *StudyService) MarkComplete(ctx context.Context, participantID string) error {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return ErrInvalidParticipant
	}
	return s.participants.MarkComplete(ctx, participantID, time.Now().UTC())
}

// Export es la estructura consolidada de las tres colecciones.
type Export struct {
	ExportedAt   time.Time            `json:"exported_at"`
	Participants []domain.Participant `json:"participants"`
	Messages     []domain.Message     `json:"messages"`
	Ratings      []domain.Rating      `json:"ratings"`
}

func (s *StudyService) ExportData(ctx context.Context) (Export, error) {
	participants, err := s.participants.List(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("list participants: %w", err)
	}
	messages, err := s.messages.ListAll(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("list messages: %w", err)
	}
	ratings, err := s.ratings.List(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("list ratings: %w", err)
	}

	if participants == nil {
		participants = []domain.Participant{}
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	if ratings == nil {
		ratings = []domain.Rating{}
	}
	return Export{
		ExportedAt:   time.Now().UTC(),
		Participants: participants,
		Messages:     messages,
		Ratings:      ratings,
	}, nil
}

// Stats es el resumen para el panel de admin.
type Stats struct {
	Participants int `json:"participants"`
	Completed    int `json:"completed"`
	Messages     int `json:"messages"`
	Ratings      int `json:"ratings"`
}

func (s *StudyService) GetStats(ctx context.Context) (Stats, error) {
	export, err := s.ExportData(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{
		Participants: len(export.Participants),
		Messages:     len(export.Messages),
		Ratings:      len(export.Ratings),
	}
	for _, p := range export.Participants {
		if p.CompletedAt != nil {
			stats.Completed++
		}
	}
	return stats, nil
}
