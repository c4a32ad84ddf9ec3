package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homophily-study/internal/config"
	"homophily-study/internal/domain"
	"homophily-study/internal/repository"
	"homophily-study/internal/service"
)

// StudyHandler mantiene dependencias para los endpoints de ciclo de vida del
// participante.
type StudyHandler struct {
	logger     *zap.Logger
	study      *service.StudyService
	experiment *config.Experiment
}

func NewStudyHandler(logger *zap.Logger, study *service.StudyService, experiment *config.Experiment) *StudyHandler {
	return &StudyHandler{logger: logger, study: study, experiment: experiment}
}

// Start maneja POST /api/start: registra un participante con asignacion de
// grupo contrabalanceada.
func (h *StudyHandler) Start(c *gin.Context) {
	p, err := h.study.Register(c.Request.Context())
	if err != nil {
		h.logger.Error("register participant failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participant_id": p.ID, "group": p.Group})
}

type profileRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	Profile       struct {
		Age                string `json:"age"`
		Gender             string `json:"gender"`
		Education          string `json:"education"`
		Interests          string `json:"interests"`
		CommunicationStyle string `json:"communication_style"`
		Tipi1              int    `json:"tipi_1"`
		Tipi2              int    `json:"tipi_2"`
		Tipi3              int    `json:"tipi_3"`
		Tipi4              int    `json:"tipi_4"`
		Tipi5              int    `json:"tipi_5"`
		Tipi6              int    `json:"tipi_6"`
		Tipi7              int    `json:"tipi_7"`
		Tipi8              int    `json:"tipi_8"`
		Tipi9              int    `json:"tipi_9"`
		Tipi10             int    `json:"tipi_10"`
	} `json:"profile"`
}

func (r profileRequest) tipiAnswers() map[string]int {
	raw := map[string]int{
		"tipi_1": r.Profile.Tipi1, "tipi_2": r.Profile.Tipi2,
		"tipi_3": r.Profile.Tipi3, "tipi_4": r.Profile.Tipi4,
		"tipi_5": r.Profile.Tipi5, "tipi_6": r.Profile.Tipi6,
		"tipi_7": r.Profile.Tipi7, "tipi_8": r.Profile.Tipi8,
		"tipi_9": r.Profile.Tipi9, "tipi_10": r.Profile.Tipi10,
	}
	// Cero significa item ausente; el scorer aplica el neutro 4.
	answers := make(map[string]int, len(raw))
	for k, v := range raw {
		if v != 0 {
			answers[k] = v
		}
	}
	return answers
}

// SubmitProfile maneja POST /api/profile: guarda el cuestionario y devuelve
// la asignacion de condicion.
func (h *StudyHandler) SubmitProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing participant_id"})
		return
	}

	sub := service.ProfileSubmission{
		Age:                req.Profile.Age,
		Gender:             req.Profile.Gender,
		Education:          req.Profile.Education,
		Interests:          req.Profile.Interests,
		CommunicationStyle: req.Profile.CommunicationStyle,
		TIPI:               req.tipiAnswers(),
	}

	assignment, err := h.study.SubmitProfile(c.Request.Context(), req.ParticipantID, sub)
	if err != nil {
		h.respondStudyError(c, "save profile failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "assignment": assignment})
}

type ratingRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	Phase         int    `json:"phase"`
	BotType       string `json:"bot_type"`
	TopicID       string `json:"topic_id"`
	Rating        struct {
		Trust        int    `json:"trust"`
		Likability   int    `json:"likability"`
		Similarity   int    `json:"similarity"`
		Naturalness  int    `json:"naturalness"`
		Satisfaction int    `json:"satisfaction"`
		OpenResponse string `json:"open_response"`
	} `json:"rating"`
}

// SaveRating maneja POST /api/rating.
func (h *StudyHandler) SaveRating(c *gin.Context) {
	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid rating request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing participant_id"})
		return
	}

	rating := domain.Rating{
		ParticipantID: req.ParticipantID,
		Phase:         req.Phase,
		BotType:       req.BotType,
		TopicID:       req.TopicID,
		Trust:         req.Rating.Trust,
		Likability:    req.Rating.Likability,
		Similarity:    req.Rating.Similarity,
		Naturalness:   req.Rating.Naturalness,
		Satisfaction:  req.Rating.Satisfaction,
		OpenResponse:  req.Rating.OpenResponse,
	}
	if err := h.study.RecordRating(c.Request.Context(), rating); err != nil {
		h.respondStudyError(c, "save rating failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SavePreference maneja POST /api/preference: cual bot prefirio al final.
func (h *StudyHandler) SavePreference(c *gin.Context) {
	var req struct {
		ParticipantID string `json:"participant_id" binding:"required"`
		PreferredBot  string `json:"preferred_bot"`
		Reason        string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid preference request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing participant_id"})
		return
	}
	if err := h.study.SavePreference(c.Request.Context(), req.ParticipantID, req.PreferredBot, req.Reason); err != nil {
		h.respondStudyError(c, "save preference failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Complete maneja POST /api/complete.
func (h *StudyHandler) Complete(c *gin.Context) {
	var req struct {
		ParticipantID string `json:"participant_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid complete request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing participant_id"})
		return
	}
	if err := h.study.MarkComplete(c.Request.Context(), req.ParticipantID); err != nil {
		h.respondStudyError(c, "mark complete failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetConfig maneja GET /api/config: parametros publicos del experimento.
func (h *StudyHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"messages_per_bot": h.experiment.MessagesPerBot,
		"tipi_items":       h.experiment.TIPIItems,
		"rating_questions": h.experiment.RatingQuestions,
		"topics": gin.H{
			"a": h.experiment.TopicA,
			"b": h.experiment.TopicB,
		},
	})
}

func (h *StudyHandler) respondStudyError(c *gin.Context, logMsg string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidParticipant):
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing participant_id"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "participant not found"})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
