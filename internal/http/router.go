package http

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	adminSecret string,
	studyH *StudyHandler,
	chatH *ChatHandler,
	adminH *AdminHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	api := r.Group("/api")
	api.POST("/start", studyH.Start)
	api.POST("/profile", studyH.SubmitProfile)
	api.POST("/chat", chatH.Chat)
	api.POST("/chat/stream", chatH.ChatStream)
	api.POST("/rating", studyH.SaveRating)
	api.POST("/preference", studyH.SavePreference)
	api.POST("/complete", studyH.Complete)
	api.GET("/config", studyH.GetConfig)

	admin := r.Group("/admin", adminSecretMiddleware(adminSecret))
	admin.GET("/stats", adminH.Stats)
	admin.GET("/export", adminH.Export)
	admin.GET("/data", adminH.DownloadArchive)
	admin.GET("/data/:filename", adminH.DownloadFile)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// adminSecretMiddleware exige ?secret= con igualdad exacta de strings; si no
// coincide responde 403 sin tocar datos.
func adminSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.Query("secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid admin secret"})
			return
		}
		c.Next()
	}
}
