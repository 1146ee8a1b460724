package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"medassist/api/internal/assist"
	"medassist/api/internal/store"
)

// Assistant is the pipeline surface the bot drives.
type Assistant interface {
	AnalyzeReport(ctx context.Context, in assist.Envelope, p *assist.Profile) (assist.ReportAnalysis, error)
	PredictSymptoms(ctx context.Context, in assist.Envelope, p *assist.Profile) (assist.SymptomPrediction, error)
	ChatAsync(ctx context.Context, in assist.ChatRequest) (assist.ChatReply, <-chan assist.Audio, error)
	FindHospitals(ctx context.Context, in assist.Envelope) (assist.HospitalLookup, error)
	Tips(ctx context.Context, p *assist.Profile) (assist.Tips, error)
}

// Store is the optional persistence used for profiles, reports and chat
// history. Without it history lives in memory.
type Store interface {
	Find(ctx context.Context, userID string) (*assist.Profile, error)
	Save(ctx context.Context, userID string, a assist.ReportAnalysis) (int64, error)
	History(ctx context.Context, userID string, limit int) ([]assist.Turn, error)
	Append(ctx context.Context, userID string, turns ...assist.Turn) error
}

type Router struct {
	Bot   *tgbotapi.BotAPI
	AI    Assistant
	Store Store // may be nil
	Log   *slog.Logger

	// Timeout bounds one AI operation.
	Timeout time.Duration
}

const historyLimit = 20

func New(bot *tgbotapi.BotAPI, ai Assistant, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{Bot: bot, AI: ai, Log: log, Timeout: 120 * time.Second}
}

const helpText = "Send me a message to chat about your health.\n" +
	"Photo or PDF of a lab report: I'll summarize it.\n" +
	"Share a location: I'll find hospitals nearby.\n\n" +
	"Commands:\n" +
	"/symptoms <description> - likely conditions\n" +
	"/hospitals <city or address> - hospitals near a place\n" +
	"/tips - health tips\n" +
	"/voice - toggle spoken replies\n" +
	"/reset - forget this conversation"

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	cid := msg.Chat.ID

	switch {
	case msg.IsCommand():
		r.handleCommand(ctx, msg)
	case msg.Location != nil:
		r.findHospitals(ctx, cid, assist.Envelope{Geo: &assist.Geo{Lat: msg.Location.Latitude, Lng: msg.Location.Longitude}})
	case len(msg.Photo) > 0:
		r.acceptPhoto(*msg)
	case msg.Document != nil:
		r.acceptDocument(ctx, *msg)
	case strings.TrimSpace(msg.Text) != "":
		r.chat(ctx, cid, msg.Text)
	}
}

func (r *Router) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		r.send(cid, helpText)
	case "health":
		r.send(cid, "OK")
	case "symptoms":
		if args == "" {
			r.send(cid, "Describe your symptoms after the command, e.g. /symptoms fever and sore throat")
			return
		}
		r.predictSymptoms(ctx, cid, args)
	case "hospitals":
		if args == "" {
			r.send(cid, "Share your location or add a place, e.g. /hospitals Lyon")
			return
		}
		r.findHospitals(ctx, cid, assist.Envelope{Query: args})
	case "tips":
		r.tips(ctx, cid)
	case "voice":
		if toggleVoice(cid) {
			r.send(cid, "Voice replies on.")
		} else {
			r.send(cid, "Voice replies off.")
		}
	case "reset":
		resetHistory(cid)
		r.send(cid, "Conversation cleared.")
	default:
		r.send(cid, "Unknown command. /help lists what I can do.")
	}
}

func (r *Router) chat(ctx context.Context, cid int64, text string) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	uid := userID(cid)
	r.typing(cid)
	reply, audio, err := r.AI.ChatAsync(ctx, assist.ChatRequest{
		Message: text,
		History: r.history(ctx, cid),
		Profile: r.profile(ctx, uid),
		Voice:   voiceOn(cid),
	})
	if err != nil {
		r.SendError(cid, err)
		return
	}
	r.send(cid, clamp(reply.Text))
	r.remember(ctx, cid,
		assist.Turn{Role: assist.RoleUser, Text: strings.TrimSpace(text)},
		assist.Turn{Role: assist.RoleModel, Text: reply.Text},
	)

	if audio == nil {
		return
	}
	if a := <-audio; !a.Empty() {
		r.sendAudio(cid, a)
	}
}

func (r *Router) predictSymptoms(ctx context.Context, cid int64, text string) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	r.typing(cid)
	out, err := r.AI.PredictSymptoms(ctx, assist.Envelope{Text: text}, r.profile(ctx, userID(cid)))
	if err != nil {
		r.SendError(cid, err)
		return
	}
	r.sendMarkdown(cid, formatSymptoms(out))
}

func (r *Router) analyzeReport(ctx context.Context, cid int64, blob *assist.Blob) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	uid := userID(cid)
	r.typing(cid)
	out, err := r.AI.AnalyzeReport(ctx, assist.Envelope{Blob: blob}, r.profile(ctx, uid))
	if err != nil {
		r.SendError(cid, err)
		return
	}
	if r.Store != nil {
		if _, err := r.Store.Save(ctx, uid, out); err != nil {
			r.Log.Warn("report not saved", "chat", cid, "err", err)
		}
	}
	r.sendMarkdown(cid, formatReport(out))
}

func (r *Router) findHospitals(ctx context.Context, cid int64, in assist.Envelope) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	r.typing(cid)
	out, err := r.AI.FindHospitals(ctx, in)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	r.send(cid, formatHospitals(out))
}

func (r *Router) tips(ctx context.Context, cid int64) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	r.typing(cid)
	out, err := r.AI.Tips(ctx, r.profile(ctx, userID(cid)))
	if err != nil {
		r.SendError(cid, err)
		return
	}
	r.send(cid, formatTips(out))
}

func (r *Router) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	d := r.Timeout
	if d <= 0 {
		d = 120 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

func (r *Router) profile(ctx context.Context, uid string) *assist.Profile {
	if r.Store == nil {
		return nil
	}
	p, err := r.Store.Find(ctx, uid)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.Log.Warn("profile lookup failed", "user", uid, "err", err)
		}
		return nil
	}
	return p
}

// history prefers the store and falls back to the in-memory log.
func (r *Router) history(ctx context.Context, cid int64) []assist.Turn {
	if r.Store != nil {
		h, err := r.Store.History(ctx, userID(cid), historyLimit)
		if err == nil {
			return h
		}
		r.Log.Warn("chat history unavailable", "chat", cid, "err", err)
	}
	return memHistory(cid)
}

func (r *Router) remember(ctx context.Context, cid int64, turns ...assist.Turn) {
	if r.Store != nil {
		err := r.Store.Append(ctx, userID(cid), turns...)
		if err == nil {
			return
		}
		r.Log.Warn("chat turns not saved", "chat", cid, "err", err)
	}
	appendHistory(cid, turns...)
}

func userID(cid int64) string { return "tg:" + strconv.FormatInt(cid, 10) }

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.Warn("telegram send failed", "chat", chatID, "err", err)
	}
}

func (r *Router) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := r.Bot.Send(msg); err != nil {
		// retry as plain text when the markup is rejected
		r.send(chatID, text)
	}
}

func (r *Router) sendAudio(chatID int64, a assist.Audio) {
	up := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{Name: "reply" + audioExt(a.MIMEType), Bytes: a.Data})
	if _, err := r.Bot.Send(up); err != nil {
		r.Log.Warn("telegram audio send failed", "chat", chatID, "err", err)
	}
}

func (r *Router) typing(chatID int64) {
	_, _ = r.Bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
}

func (r *Router) SendError(chatID int64, err error) {
	r.Log.Error("bot operation failed", "chat", chatID, "err", err)
	r.send(chatID, fmt.Sprintf("Sorry, that didn't work: %s", assist.Message(err)))
}
