package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Client exposes the messaging gateway operations the bot needs.
type Client interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup Markup) error
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
	FileURL(ctx context.Context, fileID string) (string, error)
}

// HTTPClient implements Client via the bot HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// apiResponse mirrors the bot API envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
}

// NewHTTPClient creates a gateway client with default timeout and outbound
// send throttling.
func NewHTTPClient(baseURL, token string, sendRate float64, sendBurst int, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse telegram url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("telegram url must be absolute")
	}
	if token == "" {
		return nil, fmt.Errorf("telegram token must not be empty")
	}
	if sendRate <= 0 {
		sendRate = 25
	}
	if sendBurst <= 0 {
		sendBurst = 1
	}
	return &HTTPClient{
		baseURL: parsed,
		token:   token,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(sendRate), sendBurst),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (c *HTTPClient) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := *c.baseURL
	endpoint.Path = "/bot" + c.token + "/" + method

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !envelope.OK {
		c.logger.Error("telegram call failed",
			slog.String("method", method),
			slog.Int("status", resp.StatusCode),
			slog.String("description", envelope.Description),
		)
		return fmt.Errorf("telegram %s: %s", method, envelope.Description)
	}
	if out != nil && envelope.Result != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

type sendMessageRequest struct {
	ChatID      int64  `json:"chat_id"`
	Text        string `json:"text"`
	ReplyMarkup Markup `json:"reply_markup,omitempty"`
}

// SendMessage delivers text with an optional keyboard, throttled to the
// API's flood limits.
func (c *HTTPClient) SendMessage(ctx context.Context, chatID int64, text string, markup Markup) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.call(ctx, "sendMessage", sendMessageRequest{ChatID: chatID, Text: text, ReplyMarkup: markup}, nil)
}

type editMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int    `json:"message_id"`
	Text      string `json:"text"`
}

// EditMessageText replaces the text of a previously sent message.
func (c *HTTPClient) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.call(ctx, "editMessageText", editMessageRequest{ChatID: chatID, MessageID: messageID, Text: text}, nil)
}

type getFileRequest struct {
	FileID string `json:"file_id"`
}

type fileResult struct {
	FilePath string `json:"file_path"`
}

// FileURL resolves an uploaded file to a retrievable URL.
func (c *HTTPClient) FileURL(ctx context.Context, fileID string) (string, error) {
	var result fileResult
	if err := c.call(ctx, "getFile", getFileRequest{FileID: fileID}, &result); err != nil {
		return "", err
	}
	if result.FilePath == "" {
		return "", fmt.Errorf("getFile returned empty path")
	}
	download := *c.baseURL
	download.Path = "/file/bot" + c.token + "/" + result.FilePath
	return download.String(), nil
}
