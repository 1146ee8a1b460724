package handle

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"medassist/api/internal/assist"
	"medassist/api/internal/store"
)

// Assistant is the AI pipeline as seen by the HTTP layer.
type Assistant interface {
	AnalyzeReport(ctx context.Context, in assist.Envelope, p *assist.Profile) (assist.ReportAnalysis, error)
	PredictSymptoms(ctx context.Context, in assist.Envelope, p *assist.Profile) (assist.SymptomPrediction, error)
	Chat(ctx context.Context, in assist.ChatRequest) (assist.ChatReply, error)
	FindHospitals(ctx context.Context, in assist.Envelope) (assist.HospitalLookup, error)
	Tips(ctx context.Context, p *assist.Profile) (assist.Tips, error)
}

type Profiles interface {
	Find(ctx context.Context, userID string) (*assist.Profile, error)
}

type Reports interface {
	Save(ctx context.Context, userID string, a assist.ReportAnalysis) (int64, error)
}

type Chats interface {
	History(ctx context.Context, userID string, limit int) ([]assist.Turn, error)
	Append(ctx context.Context, userID string, turns ...assist.Turn) error
}

const historyLimit = 20

type Handle struct {
	ai       Assistant
	log      *slog.Logger
	deadline time.Duration

	profiles Profiles
	reports  Reports
	chats    Chats
}

func New(ai Assistant, log *slog.Logger, deadline time.Duration) *Handle {
	if deadline <= 0 {
		deadline = 120 * time.Second
	}
	return &Handle{ai: ai, log: log, deadline: deadline}
}

// WithStore enables profile lookup and history persistence.
func (h *Handle) WithStore(p Profiles, r Reports, c Chats) *Handle {
	h.profiles, h.reports, h.chats = p, r, c
	return h
}

// Register mounts the API routes.
func (h *Handle) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.POST("/report", h.AnalyzeReport)
	api.POST("/symptoms", h.PredictSymptoms)
	api.POST("/chat", h.Chat)
	api.POST("/hospitals", h.FindHospitals)
	api.POST("/tips", h.Tips)
}

// requestContext bounds one AI call. X-Request-Timeout (seconds) or
// ?timeoutSec= override the configured deadline.
func (h *Handle) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	deadline := h.deadline
	if ts := c.GetHeader("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := c.Query("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return context.WithTimeout(c.Request.Context(), deadline)
}

// profile prefers an inline profile, then the stored one for userID.
func (h *Handle) profile(ctx context.Context, inline *assist.Profile, userID string) *assist.Profile {
	if inline != nil {
		return inline
	}
	userID = strings.TrimSpace(userID)
	if userID == "" || h.profiles == nil {
		return nil
	}
	p, err := h.profiles.Find(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.log.Warn("profile lookup failed", "user", userID, "err", err)
		}
		return nil
	}
	return p
}

func (h *Handle) fail(c *gin.Context, err error) {
	status := statusFor(err)
	h.log.Error("request failed",
		"path", c.FullPath(), "status", status, "request_id", c.GetString(requestIDKey), "err", err)
	c.JSON(status, gin.H{"error": assist.Message(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// statusFor maps a pipeline error class to an HTTP status.
func statusFor(err error) int {
	var e *assist.Error
	switch {
	case errors.Is(err, assist.ErrInput):
		return http.StatusBadRequest
	case errors.Is(err, assist.ErrParse), errors.Is(err, assist.ErrValidation):
		return http.StatusBadGateway
	case errors.Is(err, assist.ErrTransport):
		return http.StatusServiceUnavailable
	case errors.As(err, &e) && e.Kind == assist.ErrUpstream:
		if e.Status >= 400 && e.Status < 500 {
			return e.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
