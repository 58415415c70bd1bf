// Package telegram delivers operator alerts through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"marketsync-service/internal/application"
	"marketsync-service/internal/infrastructure/httpx"

	"go.uber.org/zap"
)

type Notifier struct {
	BaseURL string
	Token   string
	ChatID  string
	Client  *httpx.Client
	Log     *zap.Logger
}

var _ application.AlertNotifier = (*Notifier)(nil)

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify posts text to the configured chat.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: n.ChatID, Text: text, DisableWebPagePreview: true})
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(n.BaseURL, "/"), n.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := n.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var log httpx.Logger
	if n.Log != nil {
		log = httpx.Zap(n.Log)
	}
	var out sendMessageResponse
	if err := client.DoJSON(ctx, req, &out, log); err != nil {
		// The token is part of the URL; keep it out of errors.
		return fmt.Errorf("telegram: %s", strings.ReplaceAll(err.Error(), n.Token, "***"))
	}
	if !out.OK {
		return fmt.Errorf("telegram: %s", out.Description)
	}
	return nil
}
