package http

import (
	"archive/zip"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homophily-study/internal/repository"
	"homophily-study/internal/service"
)

// AdminHandler sirve los endpoints protegidos por secreto: resumen, export
// consolidado y descarga de los archivos crudos.
type AdminHandler struct {
	logger  *zap.Logger
	study   *service.StudyService
	dataDir string
}

func NewAdminHandler(logger *zap.Logger, study *service.StudyService, dataDir string) *AdminHandler {
	return &AdminHandler{logger: logger, study: study, dataDir: dataDir}
}

// Stats maneja GET /admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.study.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Error("stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Export maneja GET /admin/export: las tres colecciones en un JSON.
func (h *AdminHandler) Export(c *gin.Context) {
	export, err := h.study.ExportData(c.Request.Context())
	if err != nil {
		h.logger.Error("export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, export)
}

var downloadableFiles = []string{
	repository.ParticipantsFile,
	repository.MessagesFile,
	repository.RatingsFile,
}

// DownloadArchive maneja GET /admin/data: ZIP con los CSV existentes.
func (h *AdminHandler) DownloadArchive(c *gin.Context) {
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename=study_data.zip`)

	zw := zip.NewWriter(c.Writer)
	for _, name := range downloadableFiles {
		path := filepath.Join(h.dataDir, name)
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			h.logger.Error("zip open failed", zap.String("file", name), zap.Error(err))
			continue
		}
		w, err := zw.Create(name)
		if err == nil {
			_, err = io.Copy(w, f)
		}
		f.Close()
		if err != nil {
			h.logger.Error("zip write failed", zap.String("file", name), zap.Error(err))
			return
		}
	}
	if err := zw.Close(); err != nil {
		h.logger.Error("zip close failed", zap.Error(err))
	}
}

// DownloadFile maneja GET /admin/data/:filename; nombres fuera de la lista
// fija responden 404.
func (h *AdminHandler) DownloadFile(c *gin.Context) {
	filename := c.Param("filename")
	allowed := false
	for _, name := range downloadableFiles {
		if filename == name {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	path := filepath.Join(h.dataDir, filename)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.Header("Content-Type", "text/csv")
	c.FileAttachment(path, filename)
}
