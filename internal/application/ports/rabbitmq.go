package ports

import (
	"context"

	"github.com/rabbitmq/amqp091-go"
)

type RabbitMQ interface {
	AuditSink
	Connect(ctx context.Context, dsn string) error
	Init() error
	PublisherWorker(ctx context.Context)
	GetConn() *amqp091.Connection
}

type RMQConsumer interface {
	Connect(dsn string) error
	Init() error
	DeliveryWorker(ctx context.Context)
}
