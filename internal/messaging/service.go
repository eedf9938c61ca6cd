package messaging

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/collabmatch/internal/logger"
	"github.com/spigell/collabmatch/internal/profile"
)

const (
	duplicateWindow = time.Second
	defaultCategory = "General"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("sender is not a participant of the conversation")
	ErrEmptyMessage         = errors.New("message content is empty")
)

// Service keeps every conversation in memory. Bus subscribers are always
// notified after the internal lock is released.
type Service struct {
	Messages Bus[Message]
	Typing   Bus[TypingEvent]
	Presence Bus[PresenceEvent]

	mu            sync.Mutex
	users         []profile.User
	byID          map[string]profile.User
	conversations map[string]*Conversation
	order         []string
	history       map[string][]*Message

	now    func() time.Time
	logger *zap.Logger
}

// NewService creates the store and seeds one conversation per
// business/influencer pair. A nil now uses time.Now.
func NewService(dir *profile.Directory, log *zap.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	s := &Service{
		byID:          make(map[string]profile.User),
		conversations: make(map[string]*Conversation),
		history:       make(map[string][]*Message),
		now:           now,
		logger:        logger.WithFields(log),
	}

	if dir == nil {
		return s
	}

	s.users = dir.Users()
	for _, u := range s.users {
		s.byID[u.ID] = u
	}

	for _, business := range dir.Businesses.Items {
		for _, influencer := range dir.Influencers.Items {
			s.seed(business, influencer)
		}
	}

	return s
}

func (s *Service) seed(business *profile.Business, influencer *profile.Influencer) {
	id := fmt.Sprintf("%s-%s", business.ID, influencer.ID)
	at := s.now()

	category := defaultCategory
	if influencer.Category != "" {
		category = influencer.Category
	}

	greeting := &Message{
		ID:             uuid.NewString(),
		ConversationID: id,
		SenderID:       business.ID,
		ReceiverID:     influencer.ID,
		Content:        fmt.Sprintf("Hi %s, I'm interested in collaborating with you.", influencer.Name),
		SentAt:         at,
		Read:           true,
		SenderType:     profile.TypeBusiness,
	}
	reply := &Message{
		ID:             uuid.NewString(),
		ConversationID: id,
		SenderID:       influencer.ID,
		ReceiverID:     business.ID,
		Content:        "Hello! Thank you for reaching out. I'd love to hear more about your project.",
		SentAt:         at,
		SenderType:     profile.TypeInfluencer,
	}

	s.conversations[id] = &Conversation{
		ID:           id,
		Participants: []string{business.ID, influencer.ID},
		Name:         influencer.Name,
		Category:     category,
		LastMessage:  *reply,
		UnreadCount:  1,
	}
	s.order = append(s.order, id)
	s.history[id] = []*Message{greeting, reply}
}

// Users returns every known user except current.
func (s *Service) Users(current string) []profile.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]profile.User, 0, len(s.users))
	for _, u := range s.users {
		if u.ID != current {
			users = append(users, u)
		}
	}
	return users
}

// Conversations lists the threads userID takes part in, most recent first.
func (s *Service) Conversations(userID string) []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []Conversation
	for _, id := range s.order {
		c := s.conversations[id]
		if c.hasParticipant(userID) {
			result = append(result, copyConversation(c))
		}
	}

	sort.SliceStable(result, func(a, b int) bool {
		return result[a].LastMessage.SentAt.After(result[b].LastMessage.SentAt)
	})

	return result
}

func (s *Service) Conversation(id string) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok {
		return Conversation{}, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	return copyConversation(c), nil
}

// ConversationBetween finds the thread shared by two users in either order.
func (s *Service) ConversationBetween(a, b string) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		c := s.conversations[id]
		if a != b && c.hasParticipant(a) && c.hasParticipant(b) {
			return copyConversation(c), nil
		}
	}
	return Conversation{}, fmt.Errorf("%w: between %s and %s", ErrConversationNotFound, a, b)
}

// History returns the messages of a conversation in the order they were sent.
func (s *Service) History(id string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, ok := s.history[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}

	result := make([]Message, 0, len(messages))
	for _, m := range messages {
		result = append(result, *m)
	}
	return result, nil
}

// Send appends a message from senderID to the conversation and notifies the
// Messages bus. Sending the same content again within a second returns the
// earlier message instead of storing a duplicate.
func (s *Service) Send(conversationID, senderID, content string) (Message, error) {
	return s.deliver(conversationID, senderID, content, false)
}

func (s *Service) deliver(conversationID, senderID, content string, auto bool) (Message, error) {
	if strings.TrimSpace(content) == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()

	c, ok := s.conversations[conversationID]
	if !ok {
		s.mu.Unlock()
		return Message{}, fmt.Errorf("%w: %s", ErrConversationNotFound, conversationID)
	}
	if !c.hasParticipant(senderID) {
		s.mu.Unlock()
		return Message{}, fmt.Errorf("%w: %s", ErrNotParticipant, senderID)
	}

	now := s.now()

	if !auto {
		if existing := s.recentDuplicate(conversationID, senderID, content, now); existing != nil {
			s.mu.Unlock()
			s.logger.Debug("duplicate message suppressed",
				zap.String("conversation_id", conversationID),
				zap.String("message_id", existing.ID),
			)
			return *existing, nil
		}
	}

	msg := &Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     c.other(senderID),
		Content:        content,
		SentAt:         now,
		SenderType:     s.byID[senderID].Type,
		Auto:           auto,
	}

	s.history[conversationID] = append(s.history[conversationID], msg)
	c.LastMessage = *msg
	c.UnreadCount++

	sent := *msg
	s.mu.Unlock()

	s.logger.Debug("message sent",
		zap.String("conversation_id", conversationID),
		zap.String("sender_id", senderID),
		zap.String("receiver_id", sent.ReceiverID),
		zap.Bool("auto", auto),
	)

	s.Messages.Publish(sent)

	return sent, nil
}

func (s *Service) recentDuplicate(conversationID, senderID, content string, now time.Time) *Message {
	for _, m := range s.history[conversationID] {
		if m.SenderID == senderID && m.Content == content && now.Sub(m.SentAt) < duplicateWindow {
			return m
		}
	}
	return nil
}

// MarkRead marks every message addressed to userID as read. The unread
// counter is recomputed over the whole thread, so messages still waiting for
// the other participant keep counting.
func (s *Service) MarkRead(conversationID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[conversationID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrConversationNotFound, conversationID)
	}

	unread := 0
	for _, m := range s.history[conversationID] {
		if m.ReceiverID == userID {
			m.Read = true
		}
		if !m.Read {
			unread++
		}
	}
	c.UnreadCount = unread
	if c.LastMessage.ReceiverID == userID {
		c.LastMessage.Read = true
	}

	return nil
}

func copyConversation(c *Conversation) Conversation {
	out := *c
	out.Participants = append([]string(nil), c.Participants...)
	return out
}
