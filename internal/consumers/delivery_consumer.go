// Package consumers runs the broker-driven background workers.
package consumers

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"freshcart.app/storefront/pkg/logger"
	"freshcart.app/storefront/pkg/models"
	"freshcart.app/storefront/pkg/order"
	"freshcart.app/storefront/pkg/rabbitmq"
)

// StartDeliveryCheckConsumer drains the delayed delivery_check queue. Each
// message fires around an order's estimated delivery time; any order still in
// flight is marked delivered. The status update is a server-side no-op for
// terminal orders, so duplicate or racing checks are harmless.
func StartDeliveryCheckConsumer(ch *amqp.Channel, store order.Store) error {
	msgs, err := ch.Consume(
		rabbitmq.DeliveryCheckQueue,
		"storefront-delivery-check", // consumer tag
		false,                       // auto-ack
		false,                       // exclusive
		false,                       // no-local
		false,                       // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			processDeliveryCheck(msg, store)
		}
	}()

	dlqMsgs, err := ch.Consume(
		rabbitmq.DeadLetterQueue,
		"storefront-dlq", // consumer tag
		false,            // auto-ack
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,
	)
	if err != nil {
		logger.Get().Warn("failed to register dead letter consumer", zap.Error(err))
		return nil
	}

	go func() {
		for msg := range dlqMsgs {
			logger.Get().Warn("order event dead-lettered", zap.ByteString("body", msg.Body))
			if err := msg.Ack(false); err != nil {
				return
			}
		}
	}()

	return nil
}

func processDeliveryCheck(msg amqp.Delivery, store order.Store) {
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Error("recovered from panic in delivery check", zap.Any("panic", r))
		}
	}()

	var event rabbitmq.Message
	if err := json.Unmarshal(msg.Body, &event); err != nil || event.OrderID == "" {
		logger.Get().Warn("invalid delivery check message", zap.ByteString("body", msg.Body))
		_ = msg.Nack(false, false) // reject without requeue, lands in the DLQ
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.UpdateStatus(ctx, event.OrderID, models.StatusDelivered); err != nil {
		logger.Get().Error("delivery check failed",
			zap.String("order_id", event.OrderID), zap.Error(err))
		_ = msg.Nack(false, true) // requeue for another attempt
		return
	}

	logger.Get().Info("delivery check completed", zap.String("order_id", event.OrderID))
	if err := msg.Ack(false); err != nil {
		logger.Get().Warn("failed to ack delivery check", zap.Error(err))
	}
}
