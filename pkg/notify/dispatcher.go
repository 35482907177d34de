package notify

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/pocketpause/pausecore/pkg/schedule"
)

// Sender delivers a composed notification over some channel (push, email).
type Sender interface {
	Send(ctx context.Context, userID string, n schedule.Notification) error
}

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Dispatcher drains due notifications: claim, batch per user, send, confirm.
// Claims roll back on send failure so a later run retries.
type Dispatcher struct {
	queue  *Queue
	sender Sender
	log    Logger
}

// NewDispatcher wires a dispatcher. A nil logger disables logging.
func NewDispatcher(queue *Queue, sender Sender, log Logger) *Dispatcher {
	if log == nil {
		log = nopLogger{}
	}
	return &Dispatcher{queue: queue, sender: sender, log: log}
}

// RunOnce processes everything currently due. Per-user failures are logged
// and do not stop other users' deliveries.
func (d *Dispatcher) RunOnce(ctx context.Context, now time.Time) error {
	due, err := d.queue.FetchDue(ctx, now)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	byUser := make(map[string][]QueuedNotification)
	for _, n := range due {
		byUser[n.UserID] = append(byUser[n.UserID], n)
	}
	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Strings(users)

	for _, userID := range users {
		if err := d.dispatchUser(ctx, userID, byUser[userID], now); err != nil {
			d.log.Errorf("dispatch failed for user %s: %v", userID, err)
		}
	}
	return nil
}

func (d *Dispatcher) dispatchUser(ctx context.Context, userID string, due []QueuedNotification, now time.Time) error {
	// Claim first; rows lost to a concurrent run simply drop out of the batch.
	var claimed []QueuedNotification
	for _, n := range due {
		if err := d.queue.Claim(ctx, n.ID, now); err != nil {
			if errors.Is(err, ErrAlreadyClaimed) {
				continue
			}
			return err
		}
		claimed = append(claimed, n)
	}
	if len(claimed) == 0 {
		return nil
	}

	items := make([]schedule.Item, 0, len(claimed))
	for _, n := range claimed {
		items = append(items, schedule.Item{ID: n.ItemID, Title: n.Title, Body: n.Body})
	}
	msg := schedule.CreateBatchedNotification(items)

	if err := d.sender.Send(ctx, userID, msg); err != nil {
		// Roll back every claim so a later run can retry the whole batch.
		for _, n := range claimed {
			if rerr := d.queue.ReleaseClaim(ctx, n.ID); rerr != nil {
				d.log.Errorf("could not release claim for notification %d: %v", n.ID, rerr)
			}
		}
		return err
	}

	for _, n := range claimed {
		if err := d.queue.MarkSent(ctx, n.ID, now); err != nil {
			d.log.Errorf("could not mark notification %d sent: %v", n.ID, err)
		}
	}
	d.log.Infof("sent %d notification(s) to user %s", len(claimed), userID)
	return nil
}

// Run dispatches on an interval until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := d.RunOnce(ctx, time.Now()); err != nil {
			d.log.Errorf("dispatcher run failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
