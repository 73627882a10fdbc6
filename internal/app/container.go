package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"stockservice/internal/config"
	"stockservice/internal/httpapi"
	platformkafka "stockservice/internal/platform/kafka"
	"stockservice/internal/platform/observability"
	"stockservice/internal/stock"
	"stockservice/internal/storage"
)

// Container holds the service's singleton resources, built once at
// startup in dependency order: store, then publisher, then consumer,
// then the HTTP surface. Any failure here is fatal; the service never
// serves traffic half-initialized.
type Container struct {
	config            *config.Config
	logger            observability.Logger
	tracer            observability.Tracer
	redisClient       *redis.Client
	store             *storage.RedisStore
	service           *stock.Service
	publisher         *platformkafka.TxnProducer
	reader            *kafkago.Reader
	consumerService   stock.ConsumerService
	httpServer        *http.Server
	otelLogShutdown   func(context.Context) error
	otelTraceShutdown func(context.Context) error
}

func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	container := &Container{config: cfg}

	container.setupObservability(ctx)

	if err := container.setupStore(ctx); err != nil {
		return nil, err
	}
	if err := container.setupPipeline(ctx); err != nil {
		return nil, err
	}
	container.setupHTTP()

	return container, nil
}

// setupObservability wires the OTel SDKs and the zap logger. Telemetry
// export failures are logged, not fatal; the service still runs with
// console logging alone.
func (c *Container) setupObservability(ctx context.Context) {
	fallback := zap.Must(zap.NewProduction())

	otelLogShutdown, err := observability.SetupLoggingSDK(ctx, c.config)
	if err != nil {
		fallback.Error("⚠️ Failed to setup OpenTelemetry logging", zap.Error(err))
	}
	c.otelLogShutdown = otelLogShutdown

	_, otelTraceShutdown, err := observability.SetupTracingSDK(ctx, c.config)
	if err != nil {
		fallback.Error("⚠️ Failed to setup OpenTelemetry tracing", zap.Error(err))
	}
	c.otelTraceShutdown = otelTraceShutdown

	c.logger = observability.NewLogger()
	c.tracer = otel.Tracer(config.ServiceName)
}

// setupStore connects to Redis and verifies it before anything else
// starts; the store is the first dependency in the startup order.
func (c *Container) setupStore(ctx context.Context) error {
	c.redisClient = redis.NewClient(&redis.Options{
		Addr:     c.config.RedisAddr(),
		Password: c.config.RedisPassword,
		DB:       c.config.RedisDB,
	})
	c.store = storage.NewRedisStore(c.redisClient)

	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("store connectivity check: %w", err)
	}
	c.service = stock.NewService(c.store, c.logger)
	c.logger.Info("✅ Connected to Redis", zap.String("addr", c.config.RedisAddr()))
	return nil
}

// setupPipeline opens the transactional producer session first, then
// the consumer reader, so a request can never be fetched before its
// response path exists.
func (c *Container) setupPipeline(ctx context.Context) error {
	publisher, err := platformkafka.NewTxnProducer(ctx,
		c.config.KafkaBroker,
		config.ResponseTopic,
		config.TransactionalID,
		config.TxnTimeout,
	)
	if err != nil {
		return fmt.Errorf("open transactional producer session: %w", err)
	}
	c.publisher = publisher
	c.logger.Info("✅ Transactional producer session open",
		zap.String("topic", config.ResponseTopic),
		zap.String("transactional_id", config.TransactionalID),
	)

	c.reader = platformkafka.NewRequestReader(c.config.KafkaBroker)

	handler := stock.NewMessageHandler(c.service, c.publisher, c.logger, c.tracer)
	c.consumerService = stock.NewConsumerService(c.reader, handler, c.logger)

	c.logger.Info("Configured topics",
		zap.String("consumer_topic", config.RequestTopic),
		zap.String("consumer_group", config.GroupID),
		zap.String("producer_topic", config.ResponseTopic),
	)
	return nil
}

func (c *Container) setupHTTP() {
	handler := httpapi.NewHandler(c.service, c.logger)
	c.httpServer = &http.Server{
		Addr:    c.config.HTTPAddr,
		Handler: handler.Router(),
	}
}

// Shutdown tears down everything the consumer loop no longer needs, in
// reverse startup order. Failures are logged and never block exit.
func (c *Container) Shutdown(ctx context.Context) {
	c.logger.Info("Shutting down infrastructure...")

	if c.reader != nil {
		if err := c.reader.Close(); err != nil {
			c.logger.Error("❌ Failed to close Kafka reader", zap.Error(err))
		}
	}

	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			c.logger.Error("❌ Failed to close producer session", zap.Error(err))
		}
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			c.logger.Error("❌ Failed to close Redis client", zap.Error(err))
		}
	}

	if c.otelTraceShutdown != nil {
		if err := c.otelTraceShutdown(ctx); err != nil {
			c.logger.Error("❌ Failed to shutdown OTel tracing", zap.Error(err))
		}
	}
	if c.otelLogShutdown != nil {
		if err := c.otelLogShutdown(ctx); err != nil {
			c.logger.Error("❌ Failed to shutdown OTel logging", zap.Error(err))
		}
	}

	if err := c.logger.Sync(); err != nil {
		fmt.Printf("Failed to sync logger: %v\n", err)
	}
}

func (c *Container) Config() *config.Config                 { return c.config }
func (c *Container) Logger() observability.Logger           { return c.logger }
func (c *Container) ConsumerService() stock.ConsumerService { return c.consumerService }
func (c *Container) HTTPServer() *http.Server               { return c.httpServer }
