package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(command string) string

// PollTimeout is the long-poll wait in seconds passed to getUpdates.
var PollTimeout = 30

type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// StartPolling long-polls for commands from the configured chat and answers
// each one there. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	client := &http.Client{
		Timeout:   time.Duration(PollTimeout+5) * time.Second,
		Transport: t.Client.Transport,
	}

	offset := 0
	for ctx.Err() == nil {
		updates, err := t.getUpdates(ctx, client, offset)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("[WARN] polling: %v", err)
			sleepCtx(ctx, 5*time.Second)
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			t.dispatch(ctx, u, handler)
		}
	}
	log.Println("[INFO] Telegram polling stopped")
}

func (t *TelegramNotifier) getUpdates(ctx context.Context, client *http.Client, offset int) ([]telegramUpdate, error) {
	raw, err := t.call(ctx, client, "getUpdates", map[string]int{
		"offset":  offset,
		"timeout": PollTimeout,
	})
	if err != nil {
		return nil, err
	}
	var updates []telegramUpdate
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

// dispatch ignores updates without text and messages from other chats.
func (t *TelegramNotifier) dispatch(ctx context.Context, u telegramUpdate, handler CommandHandler) {
	if u.Message == nil || strings.TrimSpace(u.Message.Text) == "" {
		return
	}
	if strconv.FormatInt(u.Message.Chat.ID, 10) != t.ChatID {
		log.Printf("[WARN] ignoring command from chat %d", u.Message.Chat.ID)
		return
	}
	text := strings.TrimSpace(u.Message.Text)
	log.Printf("[INFO] received command: %s", text)
	if reply := handler(text); reply != "" {
		if err := t.Send(ctx, reply); err != nil {
			log.Printf("[ERROR] send reply: %v", err)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
