// Package messaging provides an in-memory conversation store between
// businesses and influencers together with simulated typing, presence and
// automated replies.
package messaging

import (
	"time"

	"github.com/spigell/collabmatch/internal/profile"
)

type Message struct {
	ID             string           `json:"id"`
	ConversationID string           `json:"conversationId"`
	SenderID       string           `json:"senderId"`
	ReceiverID     string           `json:"receiverId"`
	Content        string           `json:"content"`
	SentAt         time.Time        `json:"sentAt"`
	Read           bool             `json:"read"`
	SenderType     profile.UserType `json:"senderType"`
	// Auto marks replies produced by the AutoResponder.
	Auto bool `json:"auto,omitempty"`
}

// Conversation is a thread between one business and one influencer.
type Conversation struct {
	ID           string   `json:"id"`
	Participants []string `json:"participants"`
	// Name and Category describe the influencer side of the thread.
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	LastMessage Message `json:"lastMessage"`
	UnreadCount int     `json:"unreadCount"`
}

func (c *Conversation) hasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

func (c *Conversation) other(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

type TypingEvent struct {
	UserID string `json:"userId"`
	Typing bool   `json:"typing"`
}

type PresenceEvent struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}
