package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// ErrNotConfigured - не задан токен бота или chat_id.
var ErrNotConfigured = errors.New("Telegram credentials not configured")

// UpstreamError - Telegram ответил ошибкой; Description идёт клиенту.
type UpstreamError struct {
	StatusCode  int
	Description string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("telegram: status %d: %s", e.StatusCode, e.Description)
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

type Telegram struct {
	apiURL string
	token  string
	chatID string
	client *http.Client
	cb     *gobreaker.CircuitBreaker
}

// NewTelegram создаёт клиента Bot API. apiURL без завершающего слеша.
func NewTelegram(apiURL, token, chatID string, log zerolog.Logger) *Telegram {
	return &Telegram{
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		chatID: chatID,
		client: &http.Client{Timeout: 10 * time.Second},
		cb:     circuitBreaker("telegram", log),
	}
}

func circuitBreaker(name string, log zerolog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

// Configured сообщает, заданы ли токен и chat_id.
func (t *Telegram) Configured() bool {
	return t.token != "" && t.chatID != ""
}

// SecretsInfo - наличие и длины секретов без самих значений.
func (t *Telegram) SecretsInfo() map[string]interface{} {
	return map[string]interface{}{
		"bot_token_exists": t.token != "",
		"bot_token_length": len(t.token),
		"chat_id_exists":   t.chatID != "",
		"chat_id_length":   len(t.chatID),
	}
}

// SendBrief форматирует заявку и отправляет её одним сообщением.
func (t *Telegram) SendBrief(ctx context.Context, b Brief) error {
	return t.SendMessage(ctx, FormatBrief(b))
}

func (t *Telegram) SendMessage(ctx context.Context, text string) error {
	if !t.Configured() {
		return ErrNotConfigured
	}
	_, err := t.cb.Execute(func() (interface{}, error) {
		return nil, t.send(ctx, text)
	})
	return err
}

func (t *Telegram) send(ctx context.Context, text string) error {
	payload, err := json.Marshal(sendMessageRequest{ChatID: t.chatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal telegram message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// URL содержит токен, наружу отдаём только операцию
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read telegram response: %w", err)
	}

	var result sendMessageResponse
	if err := json.Unmarshal(body, &result); err != nil || !result.OK {
		description := result.Description
		if description == "" {
			description = strings.TrimSpace(string(body))
		}
		return &UpstreamError{StatusCode: resp.StatusCode, Description: description}
	}
	return nil
}
