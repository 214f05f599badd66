package http

import (
	"net/http"

	"github.com/khoahotran/media-gateway/internal/domain/media"
)

// Media DTOs

type UpdateMediaRequest struct {
	PublicID string `form:"public_id" binding:"required"`
}

type DeleteMediaRequest struct {
	PublicID string `form:"public_id" binding:"required"`
}

type OperationResultDTO struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func ToOperationResultDTO(r media.OperationResult) OperationResultDTO {
	return OperationResultDTO{Type: string(r.Kind), Message: r.Message}
}

// resultStatus maps a gateway outcome to a status code. Error results always come from
// the remote store.
func resultStatus(r media.OperationResult, successStatus int) int {
	if r.OK() {
		return successStatus
	}
	return http.StatusBadGateway
}
