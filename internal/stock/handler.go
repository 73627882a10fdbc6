package stock

import (
	"context"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"stockservice/internal/platform/kafka"
	"stockservice/internal/platform/observability"
)

// MessageHandler processes one inbound request message. A nil return
// means the message is finished and its offset may be committed; a
// non-nil return means the unit must be redelivered and the offset has
// to stay uncommitted.
type MessageHandler interface {
	HandleRequest(ctx context.Context, msg kafkago.Message) error
}

// KafkaMessageHandler decodes request envelopes, dispatches recognized
// actions to the stock service and publishes the result transactionally.
type KafkaMessageHandler struct {
	service   *Service
	publisher kafka.Publisher
	logger    observability.Logger
	tracer    observability.Tracer
}

func NewMessageHandler(service *Service, publisher kafka.Publisher, logger observability.Logger, tracer observability.Tracer) MessageHandler {
	return &KafkaMessageHandler{
		service:   service,
		publisher: publisher,
		logger:    logger,
		tracer:    tracer,
	}
}

func (h *KafkaMessageHandler) HandleRequest(ctx context.Context, msg kafkago.Message) error {
	msgCtx := h.extractTraceContext(ctx, msg.Headers)

	h.logger.Info("📨 Raw Kafka message received",
		zap.ByteString("key", msg.Key),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	)

	req, err := DecodeRequest(msg.Value)
	if err != nil {
		// Malformed data cannot be fixed by redelivery; skip it and let
		// the offset advance.
		h.logger.Error("❌ Malformed request envelope, skipping",
			zap.Error(err),
			zap.ByteString("raw_value", msg.Value),
		)
		return nil
	}

	switch req.Action {
	case ActionFind:
		return h.handleFind(msgCtx, req)
	default:
		h.logger.Warn("Unrecognized action, skipping",
			zap.String("action", string(req.Action)),
			zap.String("item_id", req.ItemID),
		)
		return nil
	}
}

// handleFind runs the lookup and publishes its response inside one
// producer transaction. The lookup performs no writes, so redelivering
// the same request after a crash yields an identical response.
func (h *KafkaMessageHandler) handleFind(ctx context.Context, req Request) error {
	spanCtx, span := h.tracer.Start(ctx, "find_item")
	defer span.End()
	span.SetAttributes(
		attribute.String("stock.item_id", req.ItemID),
		attribute.String("stock.action", string(req.Action)),
	)

	entry, err := h.service.Find(spanCtx, req.ItemID)
	if err != nil {
		span.SetStatus(codes.Error, "store lookup failed")
		h.logger.Error("❌ Store lookup failed, leaving offset uncommitted",
			zap.Error(err),
			zap.String("item_id", req.ItemID),
		)
		return err
	}

	var resp Response
	if entry == nil {
		resp, err = NotFoundResponse(req.Action, fmt.Sprintf("Item: %s not found!", req.ItemID))
	} else {
		resp, err = OKResponse(req.Action, ItemView{Stock: entry.Stock, Price: entry.Price})
	}
	if err != nil {
		span.SetStatus(codes.Error, "response encoding failed")
		return err
	}
	span.SetAttributes(attribute.String("stock.status", string(resp.Status)))

	if err := h.publishResponse(spanCtx, req.ItemID, resp); err != nil {
		span.SetStatus(codes.Error, "response publish failed")
		return err
	}

	span.SetStatus(codes.Ok, "find handled")
	return nil
}

// publishResponse wraps the envelope in a producer transaction. Any
// failure surfaces ErrPublish so the consumer keeps the offset
// uncommitted and the whole find/publish unit is retried by redelivery.
func (h *KafkaMessageHandler) publishResponse(ctx context.Context, itemID string, resp Response) error {
	payload, err := EncodeResponse(resp)
	if err != nil {
		return err
	}

	if err := h.publisher.Publish(ctx, []byte(itemID), payload, h.injectTraceContext(ctx)...); err != nil {
		h.logger.Error("❌ Failed to publish response",
			zap.Error(err),
			zap.String("item_id", itemID),
		)
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	h.logger.Info("📤 Sent find response",
		zap.String("item_id", itemID),
		zap.String("status", string(resp.Status)),
	)
	return nil
}

// extractTraceContext connects this unit to the requester's span via the
// message headers.
func (h *KafkaMessageHandler) extractTraceContext(ctx context.Context, headers []kafkago.Header) context.Context {
	propagator := otel.GetTextMapPropagator()
	carrier := propagation.MapCarrier{}
	for _, header := range headers {
		carrier[string(header.Key)] = string(header.Value)
	}
	return propagator.Extract(ctx, carrier)
}

// injectTraceContext turns the current span context into response headers.
func (h *KafkaMessageHandler) injectTraceContext(ctx context.Context) []kafkago.Header {
	propagator := otel.GetTextMapPropagator()
	carrier := propagation.MapCarrier{}
	propagator.Inject(ctx, carrier)

	headers := make([]kafkago.Header, 0, len(carrier))
	for key, value := range carrier {
		headers = append(headers, kafkago.Header{Key: key, Value: []byte(value)})
	}
	return headers
}
