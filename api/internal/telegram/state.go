package telegram

import (
	"sync"
	"time"

	"medassist/api/internal/assist"
)

const (
	debounce  = 1200 * time.Millisecond
	maxPixels = 18_000_000
)

var (
	voice   sync.Map // chatID -> bool
	convos  sync.Map // chatID -> *convo
	batches sync.Map // key -> *photoBatch
)

func voiceOn(chatID int64) bool {
	v, ok := voice.Load(chatID)
	return ok && v.(bool)
}

// toggleVoice flips the chat's voice setting and returns the new value.
func toggleVoice(chatID int64) bool {
	on := !voiceOn(chatID)
	voice.Store(chatID, on)
	return on
}

type convo struct {
	mu    sync.Mutex
	turns []assist.Turn
}

func memHistory(chatID int64) []assist.Turn {
	v, ok := convos.Load(chatID)
	if !ok {
		return nil
	}
	c := v.(*convo)
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]assist.Turn(nil), c.turns...)
}

// appendHistory keeps the newest historyLimit turns.
func appendHistory(chatID int64, turns ...assist.Turn) {
	v, _ := convos.LoadOrStore(chatID, &convo{})
	c := v.(*convo)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, turns...)
	if n := len(c.turns) - historyLimit; n > 0 {
		c.turns = append([]assist.Turn(nil), c.turns[n:]...)
	}
}

func resetHistory(chatID int64) { convos.Delete(chatID) }

// photoBatch collects the pages of one report sent as an album.
type photoBatch struct {
	ChatID int64
	Key    string // "grp:<mediaGroupID>" | "chat:<chatID>"

	mu     sync.Mutex
	images [][]byte
	timer  *time.Timer
}
