package http

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mediaUC "github.com/khoahotran/media-gateway/internal/application/usecase/media"
	"github.com/khoahotran/media-gateway/pkg/apperror"
	"github.com/khoahotran/media-gateway/pkg/logger"
)

type MediaHandler struct {
	gateway        *mediaUC.Gateway
	maxUploadBytes int64
	logger         logger.Logger
}

func NewMediaHandler(gw *mediaUC.Gateway, maxUploadBytes int64, log logger.Logger) *MediaHandler {
	return &MediaHandler{gateway: gw, maxUploadBytes: maxUploadBytes, logger: log}
}

type uploadedFile struct {
	data     []byte
	filename string
	mimeType string
}

func (h *MediaHandler) readFile(c *gin.Context) (*uploadedFile, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, apperror.NewInvalidInput("'file' is required", err)
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		return nil, apperror.NewTooLarge(h.maxUploadBytes)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperror.NewInternal("failed to open file", err)
	}
	defer file.Close()

	data, err := readAll(file, h.maxUploadBytes)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, apperror.NewInvalidInput("'file' is empty", nil)
	}

	return &uploadedFile{
		data:     data,
		filename: fileHeader.Filename,
		mimeType: fileHeader.Header.Get("Content-Type"),
	}, nil
}

func readAll(file multipart.File, limit int64) ([]byte, error) {
	var r io.Reader = file
	if limit > 0 {
		r = io.LimitReader(file, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperror.NewInternal("failed to read file", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, apperror.NewTooLarge(limit)
	}
	return data, nil
}

func (h *MediaHandler) CreateMedia(c *gin.Context) {
	f, err := h.readFile(c)
	if err != nil {
		c.Error(err)
		return
	}

	result := h.gateway.Create(c.Request.Context(), f.data, f.filename, f.mimeType)
	c.JSON(resultStatus(result, http.StatusCreated), ToOperationResultDTO(result))
}

func (h *MediaHandler) ListMedia(c *gin.Context) {
	list, err := h.gateway.RetrieveAll(c.Request.Context())
	if err != nil {
		c.Error(apperror.NewUpstream("failed to list media resources", err))
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *MediaHandler) UpdateMedia(c *gin.Context) {
	var req UpdateMediaRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperror.NewInvalidInput("'public_id' is required", err))
		return
	}

	f, err := h.readFile(c)
	if err != nil {
		c.Error(err)
		return
	}

	result := h.gateway.Update(c.Request.Context(), req.PublicID, f.data, f.mimeType)
	c.JSON(resultStatus(result, http.StatusOK), ToOperationResultDTO(result))
}

func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	var req DeleteMediaRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperror.NewInvalidInput("'public_id' is required", err))
		return
	}

	result := h.gateway.Delete(c.Request.Context(), req.PublicID)
	if !result.OK() {
		h.logger.Warn("Delete media returned error result", zap.String("public_id", req.PublicID), zap.String("request_id", GetRequestID(c)))
	}
	c.JSON(resultStatus(result, http.StatusOK), ToOperationResultDTO(result))
}
