package telegram

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

// retryDelay picks the wait after a failed getUpdates call.
func retryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.RetryAfter > 0 {
		return time.Duration(tgErr.RetryAfter) * time.Second
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return time.Second
}

// Poll long-polls for updates until ctx is done. Each update is handled in
// its own goroutine so a slow AI call does not block other chats.
func (r *Router) Poll(ctx context.Context) {
	const (
		baseDelay = time.Second
		maxDelay  = 15 * time.Second
	)
	offset := 0
	for ctx.Err() == nil {
		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30

		updates, err := r.Bot.GetUpdates(u)
		if err != nil {
			d := min(max(retryDelay(err), baseDelay), maxDelay)
			r.Log.Warn("polling error", "err", err, "retry_in", d)
			if !sleep(ctx, d) {
				break
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			go r.HandleUpdate(ctx, upd)
		}
		if len(updates) == 0 && !sleep(ctx, 200*time.Millisecond) {
			break
		}
	}
	r.Log.Info("polling stopped")
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
