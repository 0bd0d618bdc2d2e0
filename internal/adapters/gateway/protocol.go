package gateway

import (
	"encoding/base64"
	"time"

	dispatch "triggerbot/internal/services/dispatch/domain"
	orch "triggerbot/internal/services/orchestrator/domain"
)

// frame is every message exchanged with the sidecar; Type selects the populated fields
type frame struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	// inbound message
	From     string `json:"from,omitempty"`
	Text     string `json:"text,omitempty"`
	IsGroup  bool   `json:"is_group,omitempty"`
	FromMe   bool   `json:"from_me,omitempty"`
	PushName string `json:"push_name,omitempty"`
	TS       int64  `json:"ts,omitempty"`
	Line     string `json:"line,omitempty"`

	// outbound send
	To       string `json:"to,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Mime     string `json:"mime,omitempty"`
	Data     string `json:"data,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Voice    bool   `json:"voice,omitempty"`

	// ack
	OK        bool   `json:"ok,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Fatal     bool   `json:"fatal,omitempty"`
}

const (
	frameMessage = "message"
	frameSend    = "send"
	frameAck     = "ack"
)

func sendFrame(id, to string, p dispatch.Payload) frame {
	f := frame{
		Type:     frameSend,
		ID:       id,
		To:       to,
		Kind:     string(p.Kind),
		Text:     p.Text,
		Caption:  p.Caption,
		Mime:     p.Mime,
		FileName: p.FileName,
		Voice:    p.Voice,
	}
	if len(p.Data) > 0 {
		f.Data = base64.StdEncoding.EncodeToString(p.Data)
	}
	return f
}

func (f frame) event(now time.Time) orch.InboundEvent {
	at := now
	if f.TS > 0 {
		at = time.Unix(f.TS, 0).UTC()
	}
	return orch.InboundEvent{
		SenderID:   f.From,
		Text:       f.Text,
		IsGroup:    f.IsGroup,
		FromSelf:   f.FromMe,
		SenderName: f.PushName,
		ReceivedAt: at,
		Line:       f.Line,
	}
}
