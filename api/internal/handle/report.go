package handle

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medassist/api/internal/assist"
)

type reportReq struct {
	Text    string      `json:"text" binding:"max=100000"`
	File    *fileReq    `json:"file"`
	UserID  string      `json:"userId" binding:"max=128"`
	Profile *profileReq `json:"profile"`
}

type reportResp struct {
	assist.ReportAnalysis
	ID int64 `json:"id,omitempty"`
}

// AnalyzeReport handles POST /api/report.
func (h *Handle) AnalyzeReport(c *gin.Context) {
	var req reportReq
	if !bind(c, &req) {
		return
	}
	b, err := req.File.blob()
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	prof := h.profile(ctx, req.Profile.toProfile(), req.UserID)
	out, err := h.ai.AnalyzeReport(ctx, assist.Envelope{Text: req.Text, Blob: b}, prof)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := reportResp{ReportAnalysis: out}
	if uid := strings.TrimSpace(req.UserID); uid != "" && h.reports != nil {
		id, err := h.reports.Save(ctx, uid, out)
		if err != nil {
			h.log.Warn("report not saved", "user", uid, "err", err)
		} else {
			resp.ID = id
		}
	}
	c.JSON(http.StatusOK, resp)
}
