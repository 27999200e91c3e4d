package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/domain/repository"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TypeNotificationDeliver is the task type of queued notifications
const TypeNotificationDeliver = "notification:deliver"

// Notifier hands a message to the notification collaborator. Callers treat
// failures as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, msg entity.NotificationMessage) error
}

// NotificationDeliverer stores a notification and bumps the recipient's
// unread counter. It is both the inline Notifier and the queue task body.
type NotificationDeliverer struct {
	db               *gorm.DB
	log              *logrus.Logger
	notificationRepo repository.NotificationRepository
	counter          UnreadCounter
}

func NewNotificationDeliverer(db *gorm.DB, log *logrus.Logger, notificationRepo repository.NotificationRepository, counter UnreadCounter) *NotificationDeliverer {
	return &NotificationDeliverer{
		db:               db,
		log:              log,
		notificationRepo: notificationRepo,
		counter:          counter,
	}
}

func (d *NotificationDeliverer) Notify(ctx context.Context, msg entity.NotificationMessage) error {
	notification := msg.ToNotification()
	if err := d.notificationRepo.Create(d.db.WithContext(ctx), notification); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	if _, err := d.counter.Increment(ctx, msg.UserID); err != nil {
		// the row is stored; the counter is reconciled on the next listing
		d.log.Warnf("Failed to increment unread counter: %+v", err)
	}

	d.log.WithFields(logrus.Fields{
		"user_id": msg.UserID,
		"kind":    msg.Kind,
	}).Debug("Notification delivered")
	return nil
}

// ProcessTask implements asynq.Handler
func (d *NotificationDeliverer) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var msg entity.NotificationMessage
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		d.log.Errorf("Invalid notification payload: %v", err)
		return fmt.Errorf("decode notification payload: %v: %w", err, asynq.SkipRetry)
	}
	return d.Notify(ctx, msg)
}

// NewNotificationTask builds the queue task for msg
func NewNotificationTask(msg entity.NotificationMessage, opts ...asynq.Option) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotificationDeliver, payload, opts...), nil
}

// taskEnqueuer is the subset of *asynq.Client used for publishing
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier publishes notifications to the asynq queue; the worker
// process delivers them with NotificationDeliverer.
type QueueNotifier struct {
	client   taskEnqueuer
	log      *logrus.Logger
	queue    string
	maxRetry int
}

func NewQueueNotifier(client taskEnqueuer, log *logrus.Logger, queue string, maxRetry int) *QueueNotifier {
	return &QueueNotifier{
		client:   client,
		log:      log,
		queue:    queue,
		maxRetry: maxRetry,
	}
}

func (n *QueueNotifier) Notify(ctx context.Context, msg entity.NotificationMessage) error {
	task, err := NewNotificationTask(msg, asynq.Queue(n.queue), asynq.MaxRetry(n.maxRetry))
	if err != nil {
		return fmt.Errorf("build notification task: %w", err)
	}

	info, err := n.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}

	n.log.Debugf("Enqueued notification task %s on queue %s", info.ID, info.Queue)
	return nil
}
