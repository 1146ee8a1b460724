package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type tipsReq struct {
	UserID  string      `json:"userId" binding:"max=128"`
	Profile *profileReq `json:"profile"`
}

// Tips handles POST /api/tips. An empty body is accepted.
func (h *Handle) Tips(c *gin.Context) {
	var req tipsReq
	if !bindOptional(c, &req) {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	out, err := h.ai.Tips(ctx, h.profile(ctx, req.Profile.toProfile(), req.UserID))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
