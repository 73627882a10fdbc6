package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Application owns the pipeline lifecycle: consumer and publisher start
// before the HTTP surface accepts traffic, and shutdown runs in reverse
// order without leaking the in-flight unit of work.
type Application struct {
	ctx          context.Context
	cancel       context.CancelFunc
	container    *Container
	consumerDone chan error
}

func NewApplication(ctx context.Context) (*Application, error) {
	appCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)

	app := &Application{
		ctx:    appCtx,
		cancel: cancel,
	}

	container, err := NewContainer(app.ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	app.container = container

	app.container.Logger().Info("Application initialized successfully")
	return app, nil
}

// Run starts the consumer loop and the HTTP server, then blocks until a
// termination signal arrives or the serving layer fails.
func (app *Application) Run() error {
	c := app.container

	app.consumerDone = make(chan error, 1)
	go func() {
		app.consumerDone <- c.ConsumerService().Start(app.ctx)
		close(app.consumerDone)
	}()

	serverErr := make(chan error, 1)
	go func() {
		if err := c.HTTPServer().ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	c.Logger().Info("🚀 Stock service ready", zap.String("http_addr", c.Config().HTTPAddr))

	select {
	case <-app.ctx.Done():
		return nil
	case err := <-serverErr:
		return err
	case err := <-app.consumerDone:
		// A failed unit stops the consumer with its offset uncommitted.
		// Exit so the restarted process picks the message up again.
		return err
	}
}

// Shutdown drains in reverse startup order: the HTTP surface stops
// taking requests, the consumer finishes its in-flight unit and leaves
// the group, then the producer session and the store close. Failures
// here are logged, never allowed to block process exit.
func (app *Application) Shutdown() {
	c := app.container
	if c == nil {
		app.cancel()
		return
	}
	c.Logger().Info("Starting application shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := c.HTTPServer().Shutdown(shutdownCtx); err != nil {
		c.Logger().Error("❌ HTTP server shutdown failed", zap.Error(err))
	}

	app.cancel()
	if app.consumerDone != nil {
		select {
		case <-app.consumerDone:
		case <-shutdownCtx.Done():
			c.Logger().Error("❌ Consumer did not drain before the shutdown deadline")
		}
	}

	c.Shutdown(context.Background())
}
