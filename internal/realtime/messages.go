package realtime

import (
	"context"
	"net/http"
	"net/url"

	"crewwatch/internal/models"
)

type SendMessageResult struct {
	Result
	MessageID string `json:"message_id,omitempty"`
}

type MessagesResult struct {
	Result
	Messages []models.RealtimeMessage `json:"messages"`
}

type HealthResult struct {
	Result
	Status   string `json:"status,omitempty"`
	Database string `json:"database,omitempty"`
}

// /health answers {status, database, timestamp} with no success flag.
func (h *HealthResult) implicitSuccess() bool {
	return h.Status == "healthy" || h.Status == "ok"
}

func (c *Client) SendMessage(ctx context.Context, msg models.OutgoingMessage) SendMessageResult {
	var out SendMessageResult
	c.call(ctx, http.MethodPost, "/messages/send", msg, &out, "Failed to send message")
	return out
}

// GetMessages lists messages addressed to recipientType/recipientID.
func (c *Client) GetMessages(ctx context.Context, recipientType models.ParticipantType, recipientID string, limit int) MessagesResult {
	var out MessagesResult
	path := "/messages/" + url.PathEscape(string(recipientType)) + "/" + url.PathEscape(recipientID) + limitQuery(limit)
	c.call(ctx, http.MethodGet, path, nil, &out, "Failed to fetch messages")
	return out
}

func (c *Client) CheckHealth(ctx context.Context) HealthResult {
	var out HealthResult
	c.call(ctx, http.MethodGet, "/health", nil, &out, "Health check failed")
	return out
}
