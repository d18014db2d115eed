package rmqconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"filevault-api/config"
	"filevault-api/internal/domain/audit"
)

// can scale depends on a parallel worker count
const preFetchCount = 8

const storeTimeout = 5 * time.Second

var errInvalidEvent = errors.New("invalid audit event")

type Consumer struct {
	cfg        config.MQ
	log        *zap.Logger
	repo       audit.Repository
	conn       *amqp091.Connection
	chConsume  *amqp091.Channel
	chDelivery <-chan amqp091.Delivery
}

func New(cfg config.MQ, logger *zap.Logger, repo audit.Repository) *Consumer {
	return &Consumer{
		cfg:  cfg,
		log:  logger,
		repo: repo,
	}
}

func (c *Consumer) Connect(dsn string) error {
	conn, err := amqp091.Dial(dsn)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}
	c.conn, c.chConsume = conn, ch

	c.log.Info("rabbitmq consumer connected successfully")

	return nil
}

func (c *Consumer) Init() error {
	if err := c.chConsume.ExchangeDeclare(
		c.cfg.Exchange,
		c.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err := c.chConsume.QueueDeclare(
		c.cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := c.chConsume.QueueBind(c.cfg.QueueName, "#", c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	if err := c.chConsume.Qos(preFetchCount, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	var err error
	c.chDelivery, err = c.chConsume.Consume(
		c.cfg.QueueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	return nil
}

func (c *Consumer) DeliveryWorker(ctx context.Context) {
	c.log.Info("starting audit delivery worker")

	defer func() {
		c.log.Info("audit delivery worker gracefully stopped")
	}()

	for {
		select {
		case msg, ok := <-c.chDelivery:
			if !ok {
				c.log.Warn("delivery channel closed")
				return
			}
			c.delivery(ctx, msg)
		case <-ctx.Done():
			_ = c.chConsume.Close()
			return
		}
	}
}

// delivery acks stored events, drops malformed ones and requeues on store failures.
func (c *Consumer) delivery(ctx context.Context, msg amqp091.Delivery) {
	err := c.handle(ctx, msg.Body)
	switch {
	case err == nil:
		err = msg.Ack(false)
	case errors.Is(err, errInvalidEvent):
		c.log.Warn("audit event dropped", zap.String("routing_key", msg.RoutingKey), zap.Error(err))
		err = msg.Nack(false, false)
	default:
		c.log.Error("audit event not stored", zap.String("message_id", msg.MessageId), zap.Error(err))
		err = msg.Nack(false, true)
	}
	if err != nil {
		c.log.Error("mq ack error", zap.Error(err))
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var e audit.Event
	if err := json.Unmarshal(body, &e); err != nil {
		return fmt.Errorf("%w: %v", errInvalidEvent, err)
	}
	if !e.Category.Valid() || !e.Severity.Valid() || e.Action == "" {
		return fmt.Errorf("%w: category=%q severity=%q action=%q", errInvalidEvent, e.Category, e.Severity, e.Action)
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	return c.repo.CreateEvent(ctx, e)
}
