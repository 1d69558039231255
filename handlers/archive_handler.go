package handlers

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"leadcrm-backend/logger"
	"leadcrm-backend/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const deletionArchivePrefix = "deletions/"

// ArchiveHandler serves deletion snapshots back out of archive storage
type ArchiveHandler struct {
	storage storage.Storage
	log     *zap.Logger
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(storage storage.Storage, log *zap.Logger) *ArchiveHandler {
	return &ArchiveHandler{storage: storage, log: log}
}

// GetSnapshot handles GET /archive?path=
func (h *ArchiveHandler) GetSnapshot(c *gin.Context) {
	p := path.Clean(strings.TrimSpace(c.Query("path")))
	if !strings.HasPrefix(p, deletionArchivePrefix) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archive path required"})
		return
	}
	if h.storage == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Archive not found"})
		return
	}

	reader, err := h.storage.Download(c.Request.Context(), p)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Archive not found"})
			return
		}
		logger.FromContext(c, h.log).Error("Failed to read archive", zap.String("path", p), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read archive"})
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+path.Base(p)+`"`)
	c.DataFromReader(http.StatusOK, -1, "application/json", reader, nil)
}
