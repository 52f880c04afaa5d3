package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const defaultQueue = "default"

// Client enqueues delayed tasks on the asynq queue.
type Client struct {
	client *asynq.Client
	queue  string
}

// NewClient connects to the queue described by cfg.
func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		client: asynq.NewClient(conn.opt),
		queue:  conn.queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleInspectionReminder enqueues a reminder for the event at runAt. The
// task id is derived from the event so rescheduling the same event is a no-op.
func (c *Client) ScheduleInspectionReminder(ctx context.Context, eventID uuid.UUID, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewInspectionReminderTask(InspectionReminderPayload{EventID: eventID.String()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.ProcessAt(runAt),
		asynq.Queue(c.queue),
		asynq.TaskID(reminderTaskID(eventID)),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func reminderTaskID(eventID uuid.UUID) string {
	return TaskInspectionReminder + ":" + eventID.String()
}

type connection struct {
	opt   asynq.RedisClientOpt
	queue string
}

// connect resolves the Redis options and queue name shared by client and worker.
func connect(cfg config.SchedulerConfig) (connection, error) {
	if cfg.GetRedisURL() == "" {
		return connection{}, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return connection{}, fmt.Errorf("parse redis url: %w", err)
	}

	tlsConfig := opt.TLSConfig
	if cfg.GetRedisTLSInsecure() {
		if tlsConfig == nil {
			tlsConfig = &tls.Config{}
		} else {
			tlsConfig = tlsConfig.Clone()
		}
		tlsConfig.InsecureSkipVerify = true
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = defaultQueue
	}

	return connection{
		opt: asynq.RedisClientOpt{
			Addr:      opt.Addr,
			Password:  opt.Password,
			DB:        opt.DB,
			TLSConfig: tlsConfig,
		},
		queue: queue,
	}, nil
}
