package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"homophily-study/internal/domain"
	"homophily-study/internal/llm"
	"homophily-study/internal/repository"
)

var ErrChatInvalidInput = errors.New("chat invalid input")

// ChatService implementa el store de sesion de conversacion y el relevo de
// turnos hacia el LLM: apendea el turno del usuario, arma el prompt de
// sistema de la condicion activa, envia el transcript completo de la fase y
// apendea la respuesta. Una falla del modelo no detiene el estudio: se
// convierte en un marcador visible dentro del transcript.
type ChatService struct {
	logger         *zap.Logger
	llmClient      llm.LLMClient
	messages       repository.MessageRepository
	prompts        PromptBuilder
	model          string
	messagesPerBot int
}

func NewChatService(
	logger *zap.Logger,
	llmClient llm.LLMClient,
	messages repository.MessageRepository,
	prompts PromptBuilder,
	model string,
	messagesPerBot int,
) *ChatService {
	return &ChatService{
		logger:         logger,
		llmClient:      llmClient,
		messages:       messages,
		prompts:        prompts,
		model:          model,
		messagesPerBot: messagesPerBot,
	}
}

// ChatRequest es un turno entrante ya validado por el transporte.
type ChatRequest struct {
	ParticipantID string
	Phase         int
	Message       string
	BotType       string
	Topic         domain.Topic
}

// ChatResult resume el estado de la fase despues de un turno. MessageCount
// cuenta solo turnos del usuario; PhaseComplete es consultivo, el store no
// rechaza turnos por encima del umbral.
type ChatResult struct {
	Response         string `json:"response"`
	MessageCount     int    `json:"message_count"`
	MessagesRequired int    `json:"messages_required"`
	PhaseComplete    bool   `json:"phase_complete"`
}

// Send procesa un turno en modo bloqueante.
func (s *ChatService) Send(ctx context.Context, req ChatRequest) (ChatResult, error) {
	req, err := s.normalize(req)
	if err != nil {
		return ChatResult{}, err
	}

	history, err := s.appendUserTurn(ctx, req)
	if err != nil {
		return ChatResult{}, err
	}

	response, err := s.llmClient.Complete(ctx, s.systemPrompt(req), history)
	if err != nil {
		// La falla queda registrada como parte del transcript y la
		// conversacion sigue.
		s.logger.Warn("llm completion failed", zap.Error(err), zap.String("participant_id", req.ParticipantID))
		response = fmt.Sprintf("[Error: %v]", err)
	}

	if err := s.appendAssistantTurn(ctx, req, response); err != nil {
		return ChatResult{}, err
	}
	return s.result(ctx, req, response)
}

// Stream procesa un turno emitiendo fragmentos via onDelta. El texto
// ensamblado se apendea al store recien cuando el stream termina completo;
// si el upstream falla no se persiste respuesta y el error sube al caller
// para que emita el evento terminal.
func (s *ChatService) Stream(ctx context.Context, req ChatRequest, onDelta func(string) error) (ChatResult, error) {
	req, err := s.normalize(req)
	if err != nil {
		return ChatResult{}, err
	}

	history, err := s.appendUserTurn(ctx, req)
	if err != nil {
		return ChatResult{}, err
	}

	full, err := s.llmClient.CompleteStream(ctx, s.systemPrompt(req), history, onDelta)
	if err != nil {
		s.logger.Warn("llm stream failed", zap.Error(err), zap.String("participant_id", req.ParticipantID))
		return ChatResult{}, err
	}

	if err := s.appendAssistantTurn(ctx, req, full); err != nil {
		return ChatResult{}, err
	}
	return s.result(ctx, req, full)
}

func (s *ChatService) normalize(req ChatRequest) (ChatRequest, error) {
	req.ParticipantID = strings.TrimSpace(req.ParticipantID)
	req.Message = strings.TrimSpace(req.Message)
	if req.ParticipantID == "" || req.Message == "" {
		return ChatRequest{}, ErrChatInvalidInput
	}
	if req.Phase == 0 {
		req.Phase = 1
	}
	if req.BotType == "" {
		req.BotType = domain.BotHighMatch
	}
	if req.Topic.Title == "" {
		req.Topic.Title = "general discussion"
	}
	if req.Topic.ID == "" {
		req.Topic.ID = "unknown"
	}
	return req, nil
}

func (s *ChatService) systemPrompt(req ChatRequest) string {
	return s.prompts.SystemPrompt(req.BotType, req.Topic.Title)
}

// appendUserTurn guarda el turno del usuario y devuelve el transcript
// completo de la fase (incluyendolo) como pares rol/contenido.
func (s *ChatService) appendUserTurn(ctx context.Context, req ChatRequest) ([]domain.ChatTurn, error) {
	msg := domain.Message{
		ParticipantID: req.ParticipantID,
		Phase:         req.Phase,
		Role:          domain.RoleUser,
		Content:       req.Message,
		BotType:       req.BotType,
		TopicID:       req.Topic.ID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	msgs, err := s.messages.ListByPhase(ctx, req.ParticipantID, req.Phase)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	history := make([]domain.ChatTurn, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, domain.ChatTurn{Role: m.Role, Content: m.Content})
	}
	return history, nil
}

func (s *ChatService) appendAssistantTurn(ctx context.Context, req ChatRequest, content string) error {
	msg := domain.Message{
		ParticipantID: req.ParticipantID,
		Phase:         req.Phase,
		Role:          domain.RoleAssistant,
		Content:       content,
		BotType:       req.BotType,
		TopicID:       req.Topic.ID,
		Model:         s.model,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return fmt.Errorf("append assistant message: %w", err)
	}
	return nil
}

func (s *ChatService) result(ctx context.Context, req ChatRequest, response string) (ChatResult, error) {
	count, err := s.messages.CountUserTurns(ctx, req.ParticipantID, req.Phase)
	if err != nil {
		return ChatResult{}, fmt.Errorf("count turns: %w", err)
	}
	return ChatResult{
		Response:         response,
		MessageCount:     count,
		MessagesRequired: s.messagesPerBot,
		PhaseComplete:    count >= s.messagesPerBot,
	}, nil
}
