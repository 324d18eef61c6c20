package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/classroom-kit/student-records/internal/events"
	"github.com/classroom-kit/student-records/internal/notify"
)

const (
	subjectNewRegistration = "Novo Cadastro de Usuário"
	subjectAccessGranted   = "Acesso Autorizado"
	bodyAccessGranted      = "Seu acesso ao sistema foi autorizado! Agora você pode fazer login."
)

// NotificationService turns account events into email.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     notify.Mailer
	adminEmail string
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer notify.Mailer, adminEmail string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventUserApproved, n.handleUserApproved)
	n.dispatcher.Subscribe(events.EventUserRemoved, n.handleUserRemoved)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("UserRegistered", zap.Int64("user_id", event.UserID), zap.String("email", payload.Email))

	body := fmt.Sprintf("Novo cadastro:\nNome: %s\nEmail: %s", payload.Name, payload.Email)
	return n.mailer.Send(ctx, n.adminEmail, subjectNewRegistration, body)
}

func (n *NotificationService) handleUserApproved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("UserApproved", zap.Int64("user_id", event.UserID), zap.String("email", payload.Email))

	return n.mailer.Send(ctx, payload.Email, subjectAccessGranted, bodyAccessGranted)
}

func (n *NotificationService) handleUserRemoved(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.UserRemovedPayload)
	n.logger.Info("UserRemoved",
		zap.Int64("user_id", event.UserID),
		zap.String("email", payload.Email),
		zap.String("actor", payload.Actor))
	return nil
}
