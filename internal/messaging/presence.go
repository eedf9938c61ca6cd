package messaging

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spigell/collabmatch/internal/logger"
)

const defaultPresenceInterval = 10 * time.Second

// Presence periodically publishes a random online status for every user.
type Presence struct {
	service  *Service
	cron     *cron.Cron
	schedule string
	random   func() float64
	logger   *zap.Logger
}

// NewPresence schedules presence updates every interval. Intervals below one
// second are rounded up by the scheduler.
func NewPresence(service *Service, interval time.Duration, log *zap.Logger) *Presence {
	if interval <= 0 {
		interval = defaultPresenceInterval
	}

	log = logger.WithFields(log)

	return &Presence{
		service:  service,
		cron:     cron.New(cron.WithLogger(cronLogger{log.Sugar()})),
		schedule: fmt.Sprintf("@every %s", interval),
		random:   rand.Float64,
		logger:   log,
	}
}

func (p *Presence) Start() error {
	if _, err := p.cron.AddFunc(p.schedule, p.tick); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	p.cron.Start()
	p.logger.Debug("presence simulation started", zap.String("schedule", p.schedule))

	return nil
}

// Stop halts the schedule and waits for a running tick to finish.
func (p *Presence) Stop() {
	<-p.cron.Stop().Done()
}

func (p *Presence) tick() {
	for _, u := range p.service.Users("") {
		p.service.Presence.Publish(PresenceEvent{UserID: u.ID, Online: p.random() > 0.5})
	}
}

// cronLogger routes scheduler logs into zap.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
