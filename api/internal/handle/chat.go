package handle

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"medassist/api/internal/assist"
)

type turnReq struct {
	Role string `json:"role" binding:"required,oneof=user model"`
	Text string `json:"text" binding:"max=20000"`
}

type chatReq struct {
	Message string      `json:"message" binding:"max=20000"`
	History []turnReq   `json:"history" binding:"max=50,dive"`
	Voice   bool        `json:"voice"`
	UserID  string      `json:"userId" binding:"max=128"`
	Profile *profileReq `json:"profile"`
}

type chatResp struct {
	Text          string `json:"text"`
	Audio         string `json:"audio,omitempty"` // base64
	AudioMIMEType string `json:"audioMimeType,omitempty"`
}

// Chat handles POST /api/chat. With a userId and a store, the stored
// conversation is used when the request carries no history, and the new
// turns are appended after a successful reply.
func (h *Handle) Chat(c *gin.Context) {
	var req chatReq
	if !bind(c, &req) {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	uid := strings.TrimSpace(req.UserID)
	history := lo.Map(req.History, func(t turnReq, _ int) assist.Turn {
		return assist.Turn{Role: t.Role, Text: t.Text}
	})
	if len(history) == 0 && uid != "" && h.chats != nil {
		stored, err := h.chats.History(ctx, uid, historyLimit)
		if err != nil {
			h.log.Warn("chat history unavailable", "user", uid, "err", err)
		}
		history = stored
	}

	reply, err := h.ai.Chat(ctx, assist.ChatRequest{
		Message: req.Message,
		History: history,
		Profile: h.profile(ctx, req.Profile.toProfile(), uid),
		Voice:   req.Voice,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	if uid != "" && h.chats != nil {
		err := h.chats.Append(ctx, uid,
			assist.Turn{Role: assist.RoleUser, Text: strings.TrimSpace(req.Message)},
			assist.Turn{Role: assist.RoleModel, Text: reply.Text},
		)
		if err != nil {
			h.log.Warn("chat turns not saved", "user", uid, "err", err)
		}
	}

	resp := chatResp{Text: reply.Text}
	if !reply.Audio.Empty() {
		resp.Audio = base64.StdEncoding.EncodeToString(reply.Audio.Data)
		resp.AudioMIMEType = reply.Audio.MIMEType
	}
	c.JSON(http.StatusOK, resp)
}
