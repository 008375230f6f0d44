// Package session manages the explicit per-user context of the insights
// surface: active filters and accumulated chat history.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/skywardair/customer-analytics/framework/connection"
	"github.com/skywardair/customer-analytics/insights/domain"
	"github.com/skywardair/customer-analytics/logger"
)

type Service struct {
	loggerProvider logger.Provider
	conn           *connection.Connection
}

func NewService(loggerProvider logger.Provider, conn *connection.Connection) *Service {
	return &Service{
		loggerProvider,
		conn,
	}
}

// GetOrCreate returns the session for id, or a fresh one when id is empty or
// unknown. New sessions are persisted immediately so subsequent requests can
// refer to them.
func (s *Service) GetOrCreate(ctx context.Context, id string) (*domain.Session, error) {
	fsDAL := NewSessionFirestoreDAL(s.conn.Firestore(ctx))

	if id != "" {
		session, err := fsDAL.GetSession(ctx, id)
		if err == nil {
			return session, nil
		}

		if !errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := fsDAL.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// SetFilters replaces a session's active filter state.
func (s *Service) SetFilters(ctx context.Context, id string, filters domain.Filters) (*domain.Session, error) {
	session, err := s.GetOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Filters = filters
	session.UpdatedAt = time.Now().UTC()

	fsDAL := NewSessionFirestoreDAL(s.conn.Firestore(ctx))

	if err := fsDAL.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// AppendExchange records one question/answer turn on the session.
func (s *Service) AppendExchange(ctx context.Context, session *domain.Session, question, answer string) error {
	now := time.Now().UTC()

	session.History = append(session.History,
		domain.ChatMessage{Role: domain.RoleUser, Content: question, Timestamp: now},
		domain.ChatMessage{Role: domain.RoleAssistant, Content: answer, Timestamp: now},
	)
	session.UpdatedAt = now

	fsDAL := NewSessionFirestoreDAL(s.conn.Firestore(ctx))

	return fsDAL.SaveSession(ctx, session)
}
