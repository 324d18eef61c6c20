package worker

import (
	"go.uber.org/zap"

	"github.com/classroom-kit/student-records/internal/config"
	"github.com/classroom-kit/student-records/internal/events"
	"github.com/classroom-kit/student-records/internal/notify"
	"github.com/classroom-kit/student-records/internal/service"
)

// StartNotificationWorker picks a mailer for the SMTP settings and
// subscribes the notification handlers to account events.
func StartNotificationWorker(dispatcher events.Dispatcher, cfg *config.Config, logger *zap.Logger) *service.NotificationService {
	if dispatcher == nil {
		return nil
	}
	mailer := notify.New(cfg.SMTP, logger)
	notificationService := service.NewNotificationService(dispatcher, mailer, cfg.Admin.Email, logger)
	notificationService.RegisterHandlers()
	return notificationService
}
