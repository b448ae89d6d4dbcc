package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/repository"
	"github.com/mamadbah2/apigest/internal/service/backup"
)

// GetCostConfig returns the unit costs, defaults included.
func (h *Handler) GetCostConfig(c *gin.Context) {
	cfg, err := repository.LoadCostConfig(c.Request.Context(), h.svc.Store)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// PutCostConfig saves the unit costs.
func (h *Handler) PutCostConfig(c *gin.Context) {
	var cfg models.UnitCostConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}
	if err := h.svc.Store.SaveSetting(c.Request.Context(), repository.SettingCostConfig, cfg); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// GetProfile returns the beekeeper profile.
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := repository.LoadProfile(c.Request.Context(), h.svc.Store)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// PutProfile saves the beekeeper profile.
func (h *Handler) PutProfile(c *gin.Context) {
	var profile models.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}
	if err := h.svc.Store.SaveSetting(c.Request.Context(), repository.SettingProfile, profile); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetHoneyTypes returns the honey type picker list.
func (h *Handler) GetHoneyTypes(c *gin.Context) {
	h.getList(c, repository.SettingHoneyTypes, repository.DefaultHoneyTypes)
}

// PutHoneyTypes replaces the honey type picker list.
func (h *Handler) PutHoneyTypes(c *gin.Context) {
	h.putList(c, repository.SettingHoneyTypes)
}

// GetFoodTypes returns the feeding picker list.
func (h *Handler) GetFoodTypes(c *gin.Context) {
	h.getList(c, repository.SettingFoodTypes, repository.DefaultFoodTypes)
}

// PutFoodTypes replaces the feeding picker list.
func (h *Handler) PutFoodTypes(c *gin.Context) {
	h.putList(c, repository.SettingFoodTypes)
}

func (h *Handler) getList(c *gin.Context, key string, fallback []string) {
	list, err := repository.LoadStringList(c.Request.Context(), h.svc.Store, key, fallback)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) putList(c *gin.Context, key string) {
	var list []string
	if err := c.ShouldBindJSON(&list); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}
	if err := h.svc.Store.SaveSetting(c.Request.Context(), key, list); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ExportBackup downloads the whole store as one JSON document.
func (h *Handler) ExportBackup(c *gin.Context) {
	doc, err := h.svc.Backup.Export(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("apigest-backup-%s.json", h.now().Format(models.DateLayout))
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := backup.Encode(c.Writer, doc); err != nil {
		h.logger.Error("backup export failed", zap.Error(err))
	}
}

// ImportBackup replaces the store content with the uploaded document.
func (h *Handler) ImportBackup(c *gin.Context) {
	doc, err := backup.Decode(c.Request.Body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.svc.Backup.Import(c.Request.Context(), doc); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "imported", "version": doc.Version})
}
