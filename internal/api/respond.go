package api

import (
	"github.com/gin-gonic/gin"
	"github.com/kapu/yt-analytics-go/pkg/errors"
	"go.uber.org/zap"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	OK      bool           `json:"ok"`
	Status  int            `json:"status"`
	Code    string         `json:"code"`
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

func (h *Handler) renderError(c *gin.Context, err error) {
	status := errors.StatusCode(err)
	resp := errorResponse{
		Status: status,
		Code:   errors.Code(err),
		Error:  err.Error(),
	}
	if appErr, ok := errors.AsAppError(err); ok {
		resp.Error = appErr.Message
		resp.Details = appErr.Context
	}

	_ = c.Error(err)
	h.logger.Warn("Request failed",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString(ctxKeyRequestID)),
		zap.Int("status", status),
		zap.String("code", resp.Code),
		zap.Error(err))

	c.AbortWithStatusJSON(status, resp)
}
