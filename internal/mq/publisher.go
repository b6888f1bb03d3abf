package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Nodeflow/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeNodeState  MessageType = "node.state"
	MessageTypeFlowState  MessageType = "flow.state"
	MessageTypeChainState MessageType = "chain.state"
)

// Publisher публикует события выполнения в RabbitMQ.
//
// Реализует executor.EventSink: executor дёргает его на каждом
// переходе состояния, внешние подписчики читают очереди событий.
// Ошибки публикации не валят запуск — только логируются.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// NodeStatePayload — payload события смены статуса узла.
type NodeStatePayload struct {
	FlowID      string            `json:"flow_id"`
	ExecutionID string            `json:"execution_id"`
	NodeID      string            `json:"node_id"`
	Status      domain.NodeStatus `json:"status"`
	Error       string            `json:"error,omitempty"`
}

// FlowStatePayload — payload события смены статуса flow.
type FlowStatePayload struct {
	FlowID      string            `json:"flow_id"`
	ExecutionID string            `json:"execution_id"`
	Status      domain.FlowStatus `json:"status"`
}

// ChainStatePayload — payload события смены статуса chain.
type ChainStatePayload struct {
	ChainID string             `json:"chain_id"`
	Status  domain.ChainStatus `json:"status"`
}

// Publish публикует сообщение в обменник событий с routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeEvents), // exchange
			string(routingKey),     // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // событие переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", ExchangeEvents, routingKey, err)
		}

		p.logger.Debug("published event",
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// NodeStateChanged публикует событие смены статуса узла.
// Реализация executor.EventSink.
func (p *Publisher) NodeStateChanged(ctx context.Context, flowID, executionID, nodeID string, status domain.NodeStatus, errMsg string) {
	msg := &Message{
		ID:   uuid.NewString(),
		Type: MessageTypeNodeState,
		Payload: NodeStatePayload{
			FlowID:      flowID,
			ExecutionID: executionID,
			NodeID:      nodeID,
			Status:      status,
			Error:       errMsg,
		},
		Timestamp: time.Now(),
	}

	if err := p.Publish(ctx, RoutingKey("node."+string(status)), msg); err != nil {
		p.logger.Warn("publish node event failed", "node_id", nodeID, "error", err)
	}
}

// FlowStateChanged публикует событие смены статуса flow.
// Реализация executor.EventSink.
func (p *Publisher) FlowStateChanged(ctx context.Context, flowID, executionID string, status domain.FlowStatus) {
	msg := &Message{
		ID:   uuid.NewString(),
		Type: MessageTypeFlowState,
		Payload: FlowStatePayload{
			FlowID:      flowID,
			ExecutionID: executionID,
			Status:      status,
		},
		Timestamp: time.Now(),
	}

	if err := p.Publish(ctx, RoutingKey("flow."+string(status)), msg); err != nil {
		p.logger.Warn("publish flow event failed", "flow_id", flowID, "error", err)
	}
}

// ChainStateChanged публикует событие смены статуса chain.
func (p *Publisher) ChainStateChanged(ctx context.Context, chainID string, status domain.ChainStatus) {
	msg := &Message{
		ID:        uuid.NewString(),
		Type:      MessageTypeChainState,
		Payload:   ChainStatePayload{ChainID: chainID, Status: status},
		Timestamp: time.Now(),
	}

	if err := p.Publish(ctx, RoutingKey("chain."+string(status)), msg); err != nil {
		p.logger.Warn("publish chain event failed", "chain_id", chainID, "error", err)
	}
}
