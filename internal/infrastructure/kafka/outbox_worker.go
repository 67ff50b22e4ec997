package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/procesos/product-directory/internal/usecase"
	"github.com/procesos/product-directory/pkg/e"
	"github.com/procesos/product-directory/pkg/jitter"
	"github.com/procesos/product-directory/pkg/logger"
)

const (
	waitNotificationTimeout = 30 * time.Second
	pollInterval            = time.Minute
	reconnectBaseDelay      = time.Second
	reconnectMaxDelay       = 30 * time.Second
)

// OutboxWorker переносит события из таблицы outbox в Kafka.
// Пачки забираются по уведомлению из канала LISTEN/NOTIFY, при старте и раз в pollInterval.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	dbConnStr string
	channel   string
	batchSize int
	lease     time.Duration
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	dbConnStr string,
	channel string,
	batchSize int,
	lease time.Duration,
) *OutboxWorker {
	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		stop:      make(chan struct{}),
		dbConnStr: dbConnStr,
		channel:   channel,
		batchSize: batchSize,
		lease:     lease,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	go func() {
		defer w.wg.Done()
		w.listenOutboxNotifications(ctx)
	}()
}

func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *OutboxWorker) run(ctx context.Context) {
	// Обрабатываем "остатки" при старте
	w.logger.Infof("draining pending outbox events on startup")
	w.drain(ctx)

	ticker := time.NewTicker(jitter.Duration(pollInterval, jitter.DefaultJitter))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("outbox worker stopped by context cancellation")
			return
		case <-w.stop:
			w.logger.Infof("outbox worker stopped")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	var conn *pgx.Conn

	connect := func() error {
		c, err := pgx.Connect(ctx, w.dbConnStr)
		if err != nil {
			return e.Wrap("failed to connect for LISTEN", err)
		}

		if _, err = c.Exec(ctx, "LISTEN "+pgx.Identifier{w.channel}.Sanitize()); err != nil {
			_ = c.Close(ctx)
			return e.Wrap("failed to LISTEN", err)
		}

		conn = c
		w.logger.Infof("subscribed to '%s' channel", w.channel)
		return nil
	}

	reconnect := func() bool {
		for attempt := 0; ; attempt++ {
			err := connect()
			if err == nil {
				return true
			}
			w.logger.Warnf("connect for LISTEN failed (attempt %d): %v", attempt+1, err)

			delay := jitter.ExponentialBackoff(reconnectBaseDelay, reconnectMaxDelay, attempt, jitter.DefaultJitter)
			select {
			case <-ctx.Done():
				return false
			case <-w.stop:
				return false
			case <-time.After(delay):
			}
		}
	}

	if !reconnect() {
		return
	}
	defer func() {
		if conn != nil {
			_ = conn.Close(context.Background())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		default:
		}

		waitCtx, cancel := context.WithTimeout(ctx, waitNotificationTimeout)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}

			w.logger.Warnf("LISTEN connection lost: %v, reconnecting", err)
			_ = conn.Close(ctx)
			conn = nil
			if !reconnect() {
				return
			}
			// Пока соединения не было, уведомления могли потеряться
			w.drain(ctx)
			continue
		}

		if notif != nil && notif.Channel == w.channel {
			w.logger.Debugf("received outbox notification, draining outbox events")
			w.drain(ctx)
		}
	}
}

// drain обрабатывает пачки, пока они не закончатся или не случится ошибка.
func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("outbox batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch возвращает true, если пачка была полной и в очереди могут остаться события.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.batchSize, w.lease)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	var failed int
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			failed++
			w.logger.Warnf("event %s (product_id=%d) not published: %v", event.EventID, event.ProductID, err)
			if err := w.repo.MarkAsPending(ctx, event.ID); err != nil {
				w.logger.Warnf("return to pending failed: %v", err)
			}
			continue
		}
		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	// Вся пачка упала: брокер недоступен, повторим по таймеру
	if failed == len(events) {
		return false, nil
	}

	return len(events) == w.batchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	err := w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event.ProductID, event.Payload))
	if err == nil {
		return nil
	}

	if isRetryableError(err) {
		return e.Wrap("temporary kafka failure, will retry", err)
	}
	return e.Wrap("kafka failure", err)
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
