package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yukikurage/taskpad/internal/constants"
	"github.com/yukikurage/taskpad/internal/models"
	"github.com/yukikurage/taskpad/internal/utils"
	"github.com/yukikurage/taskpad/internal/views"
)

// Notification is a single user-facing alert. Receivers replace an earlier
// notification carrying the same Tag.
type Notification struct {
	Title string
	Body  string
	Tag   string
}

// Notifier delivers notifications to the user.
type Notifier interface {
	RequestPermission(ctx context.Context) bool
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log. It always grants permission.
type LogNotifier struct {
	log *zap.SugaredLogger
}

func NewLogNotifier(log *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) RequestPermission(ctx context.Context) bool { return true }

func (n *LogNotifier) Notify(ctx context.Context, notification Notification) error {
	n.log.Infow(notification.Title, "body", notification.Body, "tag", notification.Tag)
	return nil
}

// AlertScheduler sends a daily summary of urgent tasks and one alert per
// overdue task per day.
type AlertScheduler struct {
	store    *TaskStore
	notifier Notifier
	clock    utils.Clock
	log      *zap.SugaredLogger

	mu          sync.Mutex
	granted     bool
	lastDay     models.Date
	lastAccount string
	seen        map[string]struct{}
}

func NewAlertScheduler(store *TaskStore, notifier Notifier, clock utils.Clock, log *zap.SugaredLogger) *AlertScheduler {
	return &AlertScheduler{
		store:    store,
		notifier: notifier,
		clock:    clock,
		log:      log,
		seen:     make(map[string]struct{}),
	}
}

// RequestPermission asks the notifier for permission and remembers the answer.
func (a *AlertScheduler) RequestPermission(ctx context.Context) bool {
	granted := a.notifier.RequestPermission(ctx)
	a.mu.Lock()
	a.granted = granted
	a.mu.Unlock()
	if !granted {
		a.log.Warnw("notification permission denied")
	}
	return granted
}

// Check evaluates the active account's tasks and sends whatever is due.
// It returns the number of notifications sent.
func (a *AlertScheduler) Check(ctx context.Context) int {
	state := a.store.State()

	a.mu.Lock()
	if !a.granted || !state.Active {
		a.mu.Unlock()
		return 0
	}

	now := a.clock.Now()
	today := models.DateOf(now)
	buckets := views.Bucket(state.Tasks, now)

	var outgoing []Notification
	if !today.Equal(a.lastDay) || state.AccountID != a.lastAccount {
		a.lastDay = today
		a.lastAccount = state.AccountID
		a.seen = make(map[string]struct{})

		if buckets.UrgentCount() > 0 {
			outgoing = append(outgoing, Notification{
				Title: "Task Manager - Daily Summary",
				Body:  fmt.Sprintf("You have %d overdue and %d tasks due today.", len(buckets.Overdue), len(buckets.DueToday)),
				Tag:   constants.DailySummaryTag,
			})
		}
	}

	for _, task := range buckets.Overdue {
		if _, ok := a.seen[task.ID]; ok {
			continue
		}
		a.seen[task.ID] = struct{}{}
		outgoing = append(outgoing, Notification{
			Title: "Overdue Task!",
			Body:  fmt.Sprintf("%q is overdue!", task.Title),
			Tag:   constants.OverdueTagPrefix + task.ID,
		})
	}
	a.mu.Unlock()

	sent := 0
	for _, n := range outgoing {
		if err := a.notifier.Notify(ctx, n); err != nil {
			a.log.Warnw("failed to send notification", "tag", n.Tag, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// Run requests permission, checks once, then re-checks on every tick of
// interval and after every task store change until ctx is done.
func (a *AlertScheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = constants.DefaultAlertInterval
	}

	changed := make(chan struct{}, 1)
	unsubscribe := a.store.Subscribe(ChangeListenerFunc(func(ChangeEvent) {
		select {
		case changed <- struct{}{}:
		default:
		}
	}))
	defer unsubscribe()

	a.RequestPermission(ctx)
	a.Check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Check(ctx)
		case <-changed:
			a.Check(ctx)
		}
	}
}
