package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medassist/api/internal/assist"
)

type symptomsReq struct {
	Symptoms string      `json:"symptoms" binding:"max=20000"`
	UserID   string      `json:"userId" binding:"max=128"`
	Profile  *profileReq `json:"profile"`
}

// PredictSymptoms handles POST /api/symptoms.
func (h *Handle) PredictSymptoms(c *gin.Context) {
	var req symptomsReq
	if !bind(c, &req) {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	prof := h.profile(ctx, req.Profile.toProfile(), req.UserID)
	out, err := h.ai.PredictSymptoms(ctx, assist.Envelope{Text: req.Symptoms}, prof)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
