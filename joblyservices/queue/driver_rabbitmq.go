package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type DriverRabbitMQConfig struct {
	Host string
	Pass string
	Port int
	User string
}

func NewDriverRabbitMQ(config DriverRabbitMQConfig) (Driver, error) {
	connection, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s:%d", config.User, config.Pass, config.Host, config.Port))
	if err != nil {
		return nil, err
	}

	channel, err := connection.Channel()
	if err != nil {
		_ = connection.Close()
		return nil, err
	}

	return &driverRabbitMQ{
		connection: connection,
		channel:    channel,
	}, nil
}

type driverRabbitMQ struct {
	connection *amqp.Connection
	channel    *amqp.Channel
}

func (driver *driverRabbitMQ) Close() error {
	return errors.Join(
		driver.channel.Close(),
		driver.connection.Close(),
	)
}

func (driver *driverRabbitMQ) CreateQueue(ctx context.Context, queueName string) error {
	_, err := driver.channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)

	return err
}

func (driver *driverRabbitMQ) Publish(ctx context.Context, queueName string, payload []byte) error {
	return driver.channel.PublishWithContext(
		ctx,
		"",        // exchange
		queueName, // routing key
		true,      // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         payload,
		},
	)
}

func (driver *driverRabbitMQ) Consume(
	ctx context.Context,
	queueName string,
	handler func(ctx context.Context, payload []byte) error,
) error {
	if ctx.Err() != nil {
		return nil
	}

	consumerTag := uuid.NewString()
	msgs, err := driver.channel.ConsumeWithContext(
		ctx,
		queueName,   // queue
		consumerTag, // consumer
		true,        // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return err
	}
	defer func() {
		_ = driver.channel.Cancel(consumerTag, false)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}

			if err := handler(ctx, d.Body); err != nil {
				return err
			}
		}
	}
}
