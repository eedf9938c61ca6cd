package messaging

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/collabmatch/internal/logger"
)

const AutoReplyContent = "Thanks for your message! This is an automated response."

// AutoResponder answers every manual message on behalf of its receiver:
// after replyDelay the receiver starts typing, after a further typingDelay
// typing stops and the automated reply is delivered.
type AutoResponder struct {
	service     *Service
	replyDelay  time.Duration
	typingDelay time.Duration
	logger      *zap.Logger

	mu          sync.Mutex
	next        uint64
	timers      map[uint64]*time.Timer
	stopped     bool
	unsubscribe func()
}

func NewAutoResponder(service *Service, replyDelay, typingDelay time.Duration, log *zap.Logger) *AutoResponder {
	return &AutoResponder{
		service:     service,
		replyDelay:  replyDelay,
		typingDelay: typingDelay,
		logger:      logger.WithFields(log),
		timers:      make(map[uint64]*time.Timer),
	}
}

// Start subscribes the responder to the service's message bus.
func (r *AutoResponder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.unsubscribe != nil || r.stopped {
		return
	}
	r.unsubscribe = r.service.Messages.Subscribe(r.handle)
}

// Stop unsubscribes and cancels every pending typing event and reply.
func (r *AutoResponder) Stop() {
	r.mu.Lock()
	r.stopped = true
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
	unsubscribe := r.unsubscribe
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Pending returns the number of scheduled, not yet fired, steps.
func (r *AutoResponder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

func (r *AutoResponder) handle(m Message) {
	if m.Auto {
		return
	}

	responder := m.ReceiverID
	r.schedule(r.replyDelay, func() {
		r.service.Typing.Publish(TypingEvent{UserID: responder, Typing: true})

		r.schedule(r.typingDelay, func() {
			r.service.Typing.Publish(TypingEvent{UserID: responder, Typing: false})

			if _, err := r.service.deliver(m.ConversationID, responder, AutoReplyContent, true); err != nil {
				r.logger.Warn("automated reply failed",
					zap.String("conversation_id", m.ConversationID),
					zap.Error(err),
				)
			}
		})
	})
}

func (r *AutoResponder) schedule(d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}

	id := r.next
	r.next++
	r.timers[id] = time.AfterFunc(d, func() {
		r.mu.Lock()
		_, pending := r.timers[id]
		delete(r.timers, id)
		r.mu.Unlock()

		if pending {
			fn()
		}
	})
}
