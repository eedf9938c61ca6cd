package messaging

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spigell/collabmatch/internal/profile"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, c *clock) *Service {
	t.Helper()

	dir, err := profile.Load("")
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	var now func() time.Time
	if c != nil {
		now = c.Now
	}
	return NewService(dir, nil, now)
}

func TestNewServiceSeedsConversations(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil)

	if got := len(s.Conversations("1")); got != 8 {
		t.Fatalf("expected a conversation with every influencer, got %d", got)
	}
	if got := len(s.Conversations("18")); got != 5 {
		t.Fatalf("expected a conversation with every business, got %d", got)
	}

	c, err := s.Conversation("1-18")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "Sarah Johnson" || c.UnreadCount != 1 || c.LastMessage.SenderID != "18" {
		t.Fatalf("unexpected seeded conversation: %+v", c)
	}

	history, err := s.History("1-18")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected two seeded messages, got %d", len(history))
	}
	if history[0].Content != "Hi Sarah Johnson, I'm interested in collaborating with you." {
		t.Fatalf("unexpected greeting: %q", history[0].Content)
	}
	if history[0].ID == history[1].ID || history[0].ID == "" {
		t.Fatalf("expected unique message ids")
	}

	if users := s.Users("18"); len(users) != 12 {
		t.Fatalf("expected every other user, got %d", len(users))
	}
}

func TestSendValidation(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil)

	tests := []struct {
		name           string
		conversationID string
		sender         string
		content        string
		err            error
	}{
		{name: "unknown conversation", conversationID: "9-9", sender: "1", content: "hi", err: ErrConversationNotFound},
		{name: "outsider", conversationID: "1-18", sender: "2", content: "hi", err: ErrNotParticipant},
		{name: "empty content", conversationID: "1-18", sender: "1", content: "  ", err: ErrEmptyMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Send(tt.conversationID, tt.sender, tt.content); !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestSendSuppressesQuickDuplicates(t *testing.T) {
	t.Parallel()

	c := newClock()
	s := newTestService(t, c)

	c.Advance(5 * time.Second)
	first, err := s.Send("1-18", "1", "Let's talk about the summer collection")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ReceiverID != "18" || first.SenderType != profile.TypeBusiness {
		t.Fatalf("unexpected message: %+v", first)
	}

	c.Advance(500 * time.Millisecond)
	again, err := s.Send("1-18", "1", "Let's talk about the summer collection")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected duplicate to return the existing message")
	}

	c.Advance(time.Second)
	later, err := s.Send("1-18", "1", "Let's talk about the summer collection")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if later.ID == first.ID {
		t.Fatalf("expected a new message outside of the duplicate window")
	}

	history, _ := s.History("1-18")
	if len(history) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(history))
	}

	conv, _ := s.Conversation("1-18")
	if conv.UnreadCount != 3 || conv.LastMessage.ID != later.ID {
		t.Fatalf("unexpected conversation state: %+v", conv)
	}
}

func TestConversationsSortedByLastMessage(t *testing.T) {
	t.Parallel()

	c := newClock()
	s := newTestService(t, c)

	c.Advance(time.Minute)
	if _, err := s.Send("3-18", "18", "Happy to cook something with you"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conversations := s.Conversations("18")
	if conversations[0].ID != "3-18" {
		t.Fatalf("expected most recent conversation first, got %s", conversations[0].ID)
	}
	if conversations[1].ID != "1-18" {
		t.Fatalf("expected seeding order to be kept on ties, got %s", conversations[1].ID)
	}
}

func TestConversationBetween(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil)

	for _, pair := range [][2]string{{"1", "18"}, {"18", "1"}} {
		c, err := s.ConversationBetween(pair[0], pair[1])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ID != "1-18" {
			t.Fatalf("unexpected conversation %s", c.ID)
		}
	}

	if _, err := s.ConversationBetween("13", "18"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected not found between two influencers, got %v", err)
	}
	if _, err := s.ConversationBetween("1", "1"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected not found for the same user, got %v", err)
	}
}

func TestMarkRead(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil)

	if err := s.MarkRead("1-18", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conv, _ := s.Conversation("1-18")
	if conv.UnreadCount != 0 || !conv.LastMessage.Read {
		t.Fatalf("expected conversation to be read, got %+v", conv)
	}

	if _, err := s.Send("1-18", "18", "Sharing my media kit"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.MarkRead("1-18", "18"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conv, _ = s.Conversation("1-18")
	if conv.UnreadCount != 1 {
		t.Fatalf("message to the business must stay unread, got %d", conv.UnreadCount)
	}

	if err := s.MarkRead("missing", "1"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSendPublishesMessage(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil)

	var published []Message
	unsubscribe := s.Messages.Subscribe(func(m Message) { published = append(published, m) })
	defer unsubscribe()

	sent, err := s.Send("2-19", "19", "Unboxing video next week?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(published) != 1 || published[0].ID != sent.ID {
		t.Fatalf("expected the sent message to be published, got %v", published)
	}
	if published[0].SenderType != profile.TypeInfluencer || published[0].Auto {
		t.Fatalf("unexpected published message: %+v", published[0])
	}
	if !strings.HasPrefix(published[0].ConversationID, "2-") {
		t.Fatalf("unexpected conversation id: %s", published[0].ConversationID)
	}
}
