package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
	"github.com/Artexxx/HR-People-Analytics/internal/repository/people"
)

type PgxPoolIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository журнал intake-топика: обработанные и отклонённые сообщения.
type Repository struct {
	pool PgxPoolIface
}

func NewRepository(pool PgxPoolIface) *Repository {
	return &Repository{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS intake_events (
	id          BIGSERIAL PRIMARY KEY,
	message_id  UUID NOT NULL UNIQUE,
	topic       TEXT NOT NULL,
	msg_key     TEXT,
	partition   INT NOT NULL,
	"offset"    BIGINT NOT NULL,
	person_id   BIGINT,
	payload     JSONB NOT NULL,
	received_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS intake_dlq (
	id          BIGSERIAL PRIMARY KEY,
	topic       TEXT NOT NULL,
	msg_key     TEXT,
	payload     TEXT,
	error       TEXT NOT NULL,
	received_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

func (r *Repository) ExistsMessage(ctx context.Context, messageID uuid.UUID) (bool, error) {
	query := `
SELECT 1
FROM intake_events
WHERE message_id = $1::uuid
LIMIT 1;
`
	row := r.pool.QueryRow(ctx, query, messageID)

	var x int
	err := row.Scan(&x)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// Admit сохраняет сотрудника и строку журнала одной транзакцией. Если
// message_id уже в журнале, возвращает dto.ErrAlreadyExists и ничего не пишет.
func (r *Repository) Admit(ctx context.Context, p dto.Person, event dto.IntakeEvent) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("pool.Begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id, err := people.InsertPerson(ctx, tx, p)
	if err != nil {
		return 0, err
	}

	event.PersonID = id
	if err := insertEvent(ctx, tx, event); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("tx.Commit: %w", err)
	}

	return id, nil
}

func insertEvent(ctx context.Context, q execer, event dto.IntakeEvent) error {
	query := `
INSERT INTO intake_events
	(message_id, topic, msg_key, partition, "offset", person_id, payload, received_at)
VALUES
	(@message_id::uuid, @topic, @msg_key, @partition, @offset, @person_id, @payload::jsonb, NOW());
`
	_, err := q.Exec(ctx, query, pgx.NamedArgs{
		"message_id": event.MessageID,
		"topic":      event.Topic,
		"msg_key":    event.Key,
		"partition":  event.Partition,
		"offset":     event.Offset,
		"person_id":  event.PersonID,
		"payload":    string(event.Payload),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return dto.ErrAlreadyExists
		}
		return fmt.Errorf("tx.Exec: %w", err)
	}

	return nil
}

func (r *Repository) InsertDLQ(ctx context.Context, dlq dto.IntakeDLQ) error {
	query := `
INSERT INTO intake_dlq
	(topic, msg_key, payload, error, received_at)
VALUES
	($1, $2, $3, $4, NOW());
`
	_, err := r.pool.Exec(ctx, query, dlq.Topic, dlq.Key, dlq.Payload, dlq.Error)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

func (r *Repository) ListEvents(ctx context.Context) ([]dto.IntakeEvent, error) {
	query := `
SELECT id, message_id, topic, coalesce(msg_key, ''), partition, "offset", coalesce(person_id, 0), payload,
       to_char(received_at, 'YYYY-MM-DD"T"HH24:MI:SSOF')
FROM intake_events
ORDER BY id DESC
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	out := []dto.IntakeEvent{}
	for rows.Next() {
		var (
			ev      dto.IntakeEvent
			payload []byte
		)

		err = rows.Scan(&ev.ID, &ev.MessageID, &ev.Topic, &ev.Key, &ev.Partition, &ev.Offset, &ev.PersonID, &payload, &ev.ReceivedAt)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		ev.Payload = payload
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return out, nil
}

func (r *Repository) ListDLQ(ctx context.Context) ([]dto.IntakeDLQ, error) {
	query := `
select id, topic, coalesce(msg_key, ''), coalesce(payload, ''), error, to_char(received_at, 'YYYY-MM-DD"T"HH24:MI:SSOF')
from intake_dlq
order by id desc
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	out := []dto.IntakeDLQ{}
	for rows.Next() {
		var item dto.IntakeDLQ

		err = rows.Scan(&item.ID, &item.Topic, &item.Key, &item.Payload, &item.Error, &item.ReceivedAt)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return out, nil
}

// ResetAll очищает журнал intake. Записи о сотрудниках не трогает.
func (r *Repository) ResetAll(ctx context.Context) error {
	query := `
TRUNCATE intake_events RESTART IDENTITY;
TRUNCATE intake_dlq RESTART IDENTITY;
`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}
