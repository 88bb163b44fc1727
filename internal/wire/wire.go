package wire

import (
	"context"
	"net/http"

	"poorito-booking/internal/adaptor"
	"poorito-booking/internal/data/repository"
	"poorito-booking/internal/notification"
	"poorito-booking/internal/usecase"
	"poorito-booking/pkg/middleware"
	"poorito-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the HTTP router and the background jobs owned by the process.
type App struct {
	Router  *chi.Mux
	Cleanup usecase.CleanupService

	worker   *notification.QueueWorker
	notifier notification.Sender
	stop     context.CancelFunc
	done     chan struct{}
}

// Wiring builds every service and handler from the stores and config.
func Wiring(db adaptor.Pinger, repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	notifier, worker := newNotifier(config, logger)

	service := usecase.NewService(repo, notifier, config, logger)
	handler := adaptor.NewHandler(service, db, !config.App.IsProduction(), logger)

	return &App{
		Router:   setupRouter(handler, config, logger),
		Cleanup:  service.Cleanup,
		worker:   worker,
		notifier: notifier,
	}
}

// newNotifier picks the confirmation path. With rabbitmq the request side publishes and an in-process
// worker mails; otherwise mail is sent straight from the detached task.
func newNotifier(config *utils.Config, logger *zap.Logger) (notification.Sender, *notification.QueueWorker) {
	mailer := notification.NewMailSender(config.Email, logger)

	switch config.Notification.Driver {
	case "rabbitmq":
		publisher := notification.NewQueueSender(config.Notification.RabbitURL, config.Notification.Queue, logger)
		worker := notification.NewQueueWorker(config.Notification.RabbitURL, config.Notification.Queue, mailer, logger)
		return publisher, worker
	case "log":
		return notification.NewLogSender(logger), nil
	default:
		return mailer, nil
	}
}

// Start launches the cleanup schedule and, when configured, the notification worker.
func (a *App) Start(ctx context.Context) {
	ctx, a.stop = context.WithCancel(ctx)
	a.done = make(chan struct{})

	a.Cleanup.Start(ctx)

	if a.worker == nil {
		close(a.done)
		return
	}
	go func() {
		defer close(a.done)
		a.worker.Run(ctx)
	}()
}

// Stop halts background jobs and waits for them to return.
func (a *App) Stop() {
	a.Cleanup.Stop()
	if a.stop != nil {
		a.stop()
		<-a.done
	}
	if closer, ok := a.notifier.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

func setupRouter(handler *adaptor.Handler, config *utils.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	// Apply routes
	wireBooking(r, handler.Booking, config, logger)
	wireMountain(r, handler.Mountain)

	r.Get("/health", handler.Health.Health)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseNotFound(w, "Route not found")
	})

	return r
}
