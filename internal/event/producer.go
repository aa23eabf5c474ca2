package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/devportal/backend/internal/domain"
	pkgkafka "github.com/devportal/backend/pkg/kafka"
	"github.com/devportal/backend/pkg/logger"
)

// Kafka topic constants for account lifecycle events.
const (
	TopicUserRegistered      = "devportal.user.registered"
	TopicUserPasswordChanged = "devportal.user.password_changed"
	TopicUserLoggedOutAll    = "devportal.user.logged_out_all"
)

// Aggregate type constant.
const AggregateTypeUser = "user"

// Source identifier for events originating from this API.
const SourceAPI = "devportal-api"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// UserPasswordChangedData is the payload for a user.password_changed event.
// The payload carries identifiers only, never credential material.
type UserPasswordChangedData struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// UserLoggedOutAllData is the payload for a user.logged_out_all event.
type UserLoggedOutAllData struct {
	UserID int64 `json:"user_id"`
}

// Producer publishes account lifecycle events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:       user.ID,
		Email:    user.Email,
		Nickname: user.Nickname,
		Role:     user.Role,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, formatUserID(user.ID), AggregateTypeUser, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}
	event.WithTraceID(logger.TraceIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// PublishUserPasswordChanged publishes a user.password_changed event.
func (p *Producer) PublishUserPasswordChanged(ctx context.Context, userID int64, email string) error {
	data := UserPasswordChangedData{
		UserID: userID,
		Email:  email,
	}

	event, err := pkgkafka.NewEvent(TopicUserPasswordChanged, formatUserID(userID), AggregateTypeUser, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create user.password_changed event: %w", err)
	}
	event.WithTraceID(logger.TraceIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicUserPasswordChanged, event); err != nil {
		return fmt.Errorf("publish user.password_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.password_changed event",
		slog.Int64("user_id", userID),
	)

	return nil
}

// PublishUserLoggedOutAll publishes a user.logged_out_all event.
func (p *Producer) PublishUserLoggedOutAll(ctx context.Context, userID int64) error {
	data := UserLoggedOutAllData{UserID: userID}

	event, err := pkgkafka.NewEvent(TopicUserLoggedOutAll, formatUserID(userID), AggregateTypeUser, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create user.logged_out_all event: %w", err)
	}
	event.WithTraceID(logger.TraceIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicUserLoggedOutAll, event); err != nil {
		return fmt.Errorf("publish user.logged_out_all event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.logged_out_all event",
		slog.Int64("user_id", userID),
	)

	return nil
}

func formatUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}
