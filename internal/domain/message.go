// Package domain contains core domain types for the adolai chat backend.
package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyMessageText is returned when a message is built without text.
var ErrEmptyMessageText = errors.New("message text cannot be empty")

// Message is a single chat bubble. IsBot discriminates the sender.
type Message struct {
	ID             string    `json:"id" yaml:"id"`
	Text           string    `json:"text" yaml:"text"`
	IsBot          bool      `json:"isBot" yaml:"is_bot"`
	Timestamp      time.Time `json:"timestamp" yaml:"timestamp"`
	Emoji          string    `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	ProcessingTime float64   `json:"processingTime,omitempty" yaml:"processing_time,omitempty"`
}

// NewMessage builds a validated message.
func NewMessage(id, text string, isBot bool, ts time.Time) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessageText
	}
	if id == "" {
		return Message{}, errors.New("message id cannot be empty")
	}
	return Message{ID: id, Text: text, IsBot: isBot, Timestamp: ts}, nil
}

// Sender returns the transcript label for the message author.
func (m Message) Sender() string {
	if m.IsBot {
		return "Bot"
	}
	return "User"
}
