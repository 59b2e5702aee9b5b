package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/infection-report-service/internal/bot"
	"github.com/couchcryptid/infection-report-service/internal/domain"
)

// ChatRequest is the JSON payload of a message on the source topic.
type ChatRequest struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Text   string `json:"text"`
	ChatID string `json:"chat_id"`
}

// ChatReply is the JSON payload written to the sink topic. Image is a PNG,
// base64-encoded by encoding/json.
type ChatReply struct {
	RequestID string `json:"request_id"`
	ChatID    string `json:"chat_id"`
	Kind      string `json:"kind"`
	Text      string `json:"text"`
	Image     []byte `json:"image,omitempty"`
	Failed    bool   `json:"failed"`
}

// Handler answers a single chat request.
type Handler interface {
	Handle(ctx context.Context, req bot.Request) (bot.Reply, error)
}

// UndecodableRequest answers bus messages whose payload is not a chat request.
const UndecodableRequest = "I couldn't read this request. Send a place for a report, or a statistic for a trend."

// DecodeError reports a message whose payload is not a chat request. ChatID
// is the message key, the only place left to send a reply to.
type DecodeError struct {
	ChatID string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode chat request: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// BotResponder implements Responder by decoding the request, handing it to
// the bot, and encoding the reply.
type BotResponder struct {
	handler Handler
	logger  *slog.Logger
}

// NewResponder creates a BotResponder.
func NewResponder(handler Handler, logger *slog.Logger) *BotResponder {
	return &BotResponder{handler: handler, logger: logger}
}

func (r *BotResponder) Respond(ctx context.Context, raw domain.RawMessage) (domain.OutboundMessage, error) {
	var req ChatRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return domain.OutboundMessage{}, &DecodeError{ChatID: string(raw.Key), Err: err}
	}
	if req.ChatID == "" {
		req.ChatID = string(raw.Key)
	}

	reply, err := r.handler.Handle(ctx, bot.Request{ID: req.ID, Kind: bot.Kind(req.Kind), Text: req.Text})
	if err != nil {
		if ctx.Err() != nil {
			return domain.OutboundMessage{}, ctx.Err()
		}
		// The reply already carries the generic failure text for the user.
		r.logger.Error("request handling failed", "request_id", reply.RequestID, "chat_id", req.ChatID, "error", err)
	}

	return SerializeReply(req.ChatID, reply)
}

// rejection is the failed reply sent back for an undecodable request.
func rejection(e *DecodeError) (domain.OutboundMessage, error) {
	return SerializeReply(e.ChatID, bot.Reply{Text: UndecodableRequest, Failed: true})
}

// SerializeReply encodes a bot reply for the sink topic, keyed by chat.
func SerializeReply(chatID string, reply bot.Reply) (domain.OutboundMessage, error) {
	data, err := json.Marshal(ChatReply{
		RequestID: reply.RequestID,
		ChatID:    chatID,
		Kind:      string(reply.Kind),
		Text:      reply.Text,
		Image:     reply.Image,
		Failed:    reply.Failed,
	})
	if err != nil {
		return domain.OutboundMessage{}, fmt.Errorf("serialize chat reply: %w", err)
	}
	return domain.OutboundMessage{
		Key:   []byte(chatID),
		Value: data,
		Headers: map[string]string{
			"request_id": reply.RequestID,
			"kind":       string(reply.Kind),
			"failed":     strconv.FormatBool(reply.Failed),
		},
	}, nil
}
