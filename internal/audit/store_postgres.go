package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "warden/pkg/domain"
	txcontext "warden/pkg/platform/tx"
)

// PostgresStore appends to audit_events. Appends made inside a transaction
// roll back with it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO audit_events (id, timestamp, user_id, subject, action, decision, reason, email, request_id, actor_id)
		VALUES ($1, $2, NULLIF($3, 0), $4, $5, $6, $7, $8, $9, $10)`,
		uuid.New(), event.Timestamp, int64(event.UserID), event.Subject, event.Action,
		event.Decision, event.Reason, event.Email, event.RequestID, event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]Event, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT timestamp, subject, action, decision, reason, email, request_id, actor_id
		FROM audit_events
		WHERE user_id = $1
		ORDER BY timestamp`, int64(userID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e := Event{UserID: userID}
		if err := rows.Scan(&e.Timestamp, &e.Subject, &e.Action, &e.Decision, &e.Reason, &e.Email, &e.RequestID, &e.ActorID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
