package websocket

import (
	"time"

	"github.com/google/uuid"

	"github.com/askwhyharsh/scamcheck/internal/scam"
)

const (
	MessageTypeAnalyze = "analyze"
	MessageTypeExtract = "extract"
	MessageTypePing    = "ping"
	MessageTypeResult  = "result"
	MessageTypeURLs    = "urls"
	MessageTypePong    = "pong"
	MessageTypeError   = "error"
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	RequestID string         `json:"request_id,omitempty"`
	Analysis  *scam.Analysis `json:"analysis,omitempty"`
	URLs      []string       `json:"urls,omitempty"`
	Content   string         `json:"content,omitempty"`
	ErrorCode string         `json:"code,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

type IncomingMessage struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Text       string `json:"text"`
	URL        string `json:"url"`
	Locale     string `json:"locale"`
	AutoDetect *bool  `json:"auto_detect"`
}

func newMessage(msgType, requestID string) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

func NewResultMessage(requestID string, a scam.Analysis) *Message {
	msg := newMessage(MessageTypeResult, requestID)
	msg.Analysis = &a
	return msg
}

func NewURLsMessage(requestID string, urls []string) *Message {
	msg := newMessage(MessageTypeURLs, requestID)
	msg.URLs = urls
	return msg
}

func NewPongMessage(requestID string) *Message {
	return newMessage(MessageTypePong, requestID)
}

func NewErrorMessage(requestID, errMsg, code string) *Message {
	msg := newMessage(MessageTypeError, requestID)
	msg.Content = errMsg
	msg.ErrorCode = code
	return msg
}
