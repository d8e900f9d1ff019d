// Package whatsapp provides a thin client for the Meta WhatsApp Cloud
// API (Graph API text messages).
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://graph.facebook.com/v19.0"

// Client sends text messages through a WhatsApp Business phone number.
type Client struct {
	token   string
	phoneID string
	baseURL string
	client  *http.Client
}

func NewClient(token, phoneID string) *Client {
	return &Client{
		token:   token,
		phoneID: phoneID,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SetBaseURL overrides the Graph API endpoint. Used in tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

type textMessageRequest struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// APIError is a Graph API error payload. Code 131047 means the 24-hour
// customer-service window is closed and a template message would be
// required instead.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp API error %d (%s): %s", e.Code, e.Type, e.Message)
}

// SessionWindowClosed reports whether the error is the provider's
// outside-24h-window rejection.
func (e *APIError) SessionWindowClosed() bool {
	return e.Code == 131047
}

// SendText sends a plain text message to the given phone number.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	reqBody := textMessageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
	}
	reqBody.Text.Body = body

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	raw, _ := io.ReadAll(resp.Body)
	var apiResp struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(raw, &apiResp); err == nil && apiResp.Error != nil {
		return apiResp.Error
	}

	return fmt.Errorf("whatsapp API error: %s", resp.Status)
}
