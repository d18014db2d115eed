package mq

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"filevault-api/config"
	"filevault-api/internal/domain/audit"
)

// "Rely on metrics, not guesses."
const bufferSize = 256

// BindingKey routes every "<category>.<severity>" key to the audit queue.
const BindingKey = "#"

type RabbitMQ struct {
	cfg      config.MQ
	log      *zap.Logger
	conn     *amqp091.Connection
	pubCh    *amqp091.Channel
	in       chan audit.Event
	mCounter *prometheus.CounterVec
}

func New(cfg config.MQ, logger *zap.Logger, mCounter *prometheus.CounterVec) *RabbitMQ {
	return &RabbitMQ{
		cfg:      cfg,
		log:      logger,
		in:       make(chan audit.Event, bufferSize),
		mCounter: mCounter,
	}
}

// Emit never blocks the caller: when the buffer is full the event is dropped and counted.
func (r *RabbitMQ) Emit(e audit.Event) {
	select {
	case r.in <- e:
	default:
		r.mCounter.WithLabelValues("audit_dropped_total").Inc()
		r.log.Warn("audit buffer full, event dropped",
			zap.String("action", e.Action),
			zap.String("routing_key", e.RoutingKey()))
	}
}

func (r *RabbitMQ) Connect(ctx context.Context, dsn string) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	amqpCfg := amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Properties: amqp091.Table{
			"connection_name": "filevault-api",
		},
		Dial: func(network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
	}

	var err error
	r.conn, err = amqp091.DialConfig(dsn, amqpCfg)
	if err != nil {
		return err
	}
	r.pubCh, err = r.conn.Channel()
	if err != nil {
		_ = r.conn.Close()
		return err
	}

	r.log.Info("rabbitmq connected successfully")

	return nil
}

func (r *RabbitMQ) Init() error {
	if err := r.pubCh.ExchangeDeclare(
		r.cfg.Exchange,
		r.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = r.pubCh.Close()
		return err
	}
	q, err := r.pubCh.QueueDeclare(
		r.cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	return r.pubCh.QueueBind(q.Name, BindingKey, r.cfg.Exchange, false, nil)
}

func (r *RabbitMQ) PublisherWorker(ctx context.Context) {
	r.log.Info("starting audit publisher worker")

	defer func() {
		r.log.Info("audit publisher worker gracefully stopped")
	}()

	for {
		select {
		case e := <-r.in:
			if err := r.publish(ctx, e); err != nil {
				r.mCounter.WithLabelValues("audit_publish_failed_total").Inc()
				r.log.Error("mq publish error", zap.String("action", e.Action), zap.Error(err))
			}
		case <-ctx.Done():
			_ = r.pubCh.Close()
			return
		}
	}
}

func (r *RabbitMQ) publish(ctx context.Context, e audit.Event) error {
	pub, err := toPublishing(e)
	if err != nil {
		return err
	}

	return r.pubCh.PublishWithContext(
		ctx,
		r.cfg.Exchange,
		e.RoutingKey(),
		false,
		false,
		pub,
	)
}

func toPublishing(e audit.Event) (amqp091.Publishing, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return amqp091.Publishing{}, err
	}

	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    e.ID.String(),
		Timestamp:    e.TS,
		Type:         e.Action,
		Body:         b,
	}, nil
}

func (r *RabbitMQ) GetConn() *amqp091.Connection { return r.conn }
