package session

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/skywardair/customer-analytics/insights/domain"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// SessionFirestoreDAL persists chat sessions.
type SessionFirestoreDAL struct {
	fs *firestore.Client
}

func NewSessionFirestoreDAL(fs *firestore.Client) *SessionFirestoreDAL {
	return &SessionFirestoreDAL{fs: fs}
}

func (d *SessionFirestoreDAL) sessionsCollection() *firestore.CollectionRef {
	return d.fs.Collection("app").Doc("insights").Collection("sessions")
}

// GetSession loads one session by ID.
func (d *SessionFirestoreDAL) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	docSnap, err := d.sessionsCollection().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrSessionNotFound
	}

	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := docSnap.DataTo(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

// SaveSession upserts a session document.
func (d *SessionFirestoreDAL) SaveSession(ctx context.Context, session *domain.Session) error {
	_, err := d.sessionsCollection().Doc(session.ID).Set(ctx, session)
	return err
}

// ListSessions returns all stored sessions, most recently updated first.
func (d *SessionFirestoreDAL) ListSessions(ctx context.Context) ([]domain.Session, error) {
	iter := d.sessionsCollection().
		OrderBy("updatedAt", firestore.Desc).
		Documents(ctx)

	var sessions []domain.Session

	for {
		docSnap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return nil, err
		}

		var session domain.Session
		if err := docSnap.DataTo(&session); err != nil {
			return nil, err
		}

		sessions = append(sessions, session)
	}

	return sessions, nil
}
