package worker

import (
	"context"

	"github.com/spec-kit/media-request-service/internal/events"
	"github.com/spec-kit/media-request-service/internal/observability"
	"github.com/spec-kit/media-request-service/internal/service"
)

// StartNotificationWorker registers notification handlers and counts every
// published event.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, metrics *observability.Metrics) {
	if dispatcher == nil {
		return
	}
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			metrics.RecordEvent(string(event.Type))
			return nil
		})
	}
}
