package queue

import (
	"context"
	"fmt"

	"go-vaccination-booking/config"
	"go-vaccination-booking/internal/service"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// RedisOpt returns the asynq connection for the notification queue database
func RedisOpt(redisCfg config.RedisConfig, notificationCfg config.NotificationConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%s", redisCfg.Host, redisCfg.Port),
		Password: redisCfg.Password,
		DB:       notificationCfg.QueueDB,
	}
}

func NewClient(redisCfg config.RedisConfig, notificationCfg config.NotificationConfig) *asynq.Client {
	return asynq.NewClient(RedisOpt(redisCfg, notificationCfg))
}

// Worker consumes queued notifications and hands them to the deliverer
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logrus.Logger
}

func NewWorker(redisCfg config.RedisConfig, notificationCfg config.NotificationConfig, deliverer *service.NotificationDeliverer, log *logrus.Logger) *Worker {
	concurrency := notificationCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	server := asynq.NewServer(
		RedisOpt(redisCfg, notificationCfg),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				notificationCfg.Queue: 1,
			},
			Logger: log,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				log.WithFields(logrus.Fields{
					"type":      task.Type(),
					"retried":   retried,
					"max_retry": maxRetry,
				}).Warnf("Failed to process task: %+v", err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(service.TypeNotificationDeliver, deliverer)

	return &Worker{server: server, mux: mux, log: log}
}

// Start begins processing in background goroutines
func (w *Worker) Start() error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start notification worker: %w", err)
	}
	w.log.Info("Notification worker started")
	return nil
}

// Shutdown waits for in-flight tasks and stops the worker
func (w *Worker) Shutdown() {
	w.server.Shutdown()
	w.log.Info("Notification worker stopped")
}
