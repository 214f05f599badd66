package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mediaUC "github.com/khoahotran/media-gateway/internal/application/usecase/media"
	"github.com/khoahotran/media-gateway/pkg/logger"
)

type GalleryHandler struct {
	galleryUC *mediaUC.GalleryUseCase
	logger    logger.Logger
}

func NewGalleryHandler(uc *mediaUC.GalleryUseCase, log logger.Logger) *GalleryHandler {
	return &GalleryHandler{galleryUC: uc, logger: log}
}

func (h *GalleryHandler) ShowGallery(c *gin.Context) {
	body, err := h.galleryUC.Render(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
