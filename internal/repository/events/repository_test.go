package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

type execCall struct {
	sql  string
	args []any
}

type fakePool struct {
	execErr error
	rowErr  error
	execs   []execCall
	tx      *fakeTx
	txErr   error
	txRow   error
}

func (p *fakePool) Begin(context.Context) (pgx.Tx, error) {
	p.tx = &fakeTx{execErr: p.txErr, rowErr: p.txRow}
	return p.tx, nil
}

// fakeTx реализует ту часть pgx.Tx, которую использует Admit.
type fakeTx struct {
	pgx.Tx
	execErr    error
	rowErr     error
	execs      []execCall
	rowSQL     string
	committed  bool
	rolledBack bool
}

func (t *fakeTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	t.rowSQL = sql
	return idRow{err: t.rowErr}
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, execCall{sql: sql, args: args})
	return pgconn.CommandTag{}, t.execErr
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type idRow struct{ err error }

func (r idRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = 9
	return nil
}

func (p *fakePool) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (p *fakePool) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return fakeRow{err: p.rowErr}
}

func (p *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.execs = append(p.execs, execCall{sql: sql, args: args})
	return pgconn.CommandTag{}, p.execErr
}

type fakeRow struct{ err error }

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int)) = 1
	return nil
}

func TestExistsMessage(t *testing.T) {
	id := uuid.New()

	found, err := NewRepository(&fakePool{}).ExistsMessage(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = NewRepository(&fakePool{rowErr: pgx.ErrNoRows}).ExistsMessage(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = NewRepository(&fakePool{rowErr: errors.New("conn reset")}).ExistsMessage(context.Background(), id)
	assert.Error(t, err)
}

func TestAdmit(t *testing.T) {
	pool := &fakePool{}
	ev := dto.IntakeEvent{
		MessageID: uuid.New(),
		Topic:     "people.intake",
		Key:       "k1",
		Partition: 2,
		Offset:    17,
		Payload:   []byte(`{"first_name":"Анна"}`),
	}

	id, err := NewRepository(pool).Admit(context.Background(), dto.Person{FirstName: "Анна", LastName: "Смирнова"}, ev)
	require.NoError(t, err)
	assert.EqualValues(t, 9, id)

	assert.Contains(t, pool.tx.rowSQL, "insert into people")
	require.Len(t, pool.tx.execs, 1)
	assert.Contains(t, pool.tx.execs[0].sql, "INSERT INTO intake_events")
	assert.Empty(t, pool.execs, "nothing is written outside the transaction")
	assert.True(t, pool.tx.committed)

	args, ok := pool.tx.execs[0].args[0].(pgx.NamedArgs)
	require.True(t, ok)
	assert.Equal(t, ev.MessageID, args["message_id"])
	assert.EqualValues(t, 9, args["person_id"])
	assert.Equal(t, `{"first_name":"Анна"}`, args["payload"])
}

func TestAdmit_JournalFailureRollsBackPerson(t *testing.T) {
	pool := &fakePool{txErr: errors.New("conn reset")}

	_, err := NewRepository(pool).Admit(context.Background(), dto.Person{FirstName: "А"}, dto.IntakeEvent{MessageID: uuid.New()})
	require.Error(t, err)
	assert.False(t, pool.tx.committed)
	assert.True(t, pool.tx.rolledBack)
}

func TestAdmit_Duplicate(t *testing.T) {
	pool := &fakePool{txErr: &pgconn.PgError{Code: "23505"}}

	_, err := NewRepository(pool).Admit(context.Background(), dto.Person{FirstName: "А"}, dto.IntakeEvent{MessageID: uuid.New()})
	assert.ErrorIs(t, err, dto.ErrAlreadyExists)
	assert.True(t, pool.tx.rolledBack)

	pool.txErr = &pgconn.PgError{Code: "23502"}
	_, err = NewRepository(pool).Admit(context.Background(), dto.Person{FirstName: "А"}, dto.IntakeEvent{MessageID: uuid.New()})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, dto.ErrAlreadyExists)
}

func TestAdmit_PersonConstraint(t *testing.T) {
	pool := &fakePool{txRow: &pgconn.PgError{Code: "23514"}}

	_, err := NewRepository(pool).Admit(context.Background(), dto.Person{Age: dto.Some(5)}, dto.IntakeEvent{MessageID: uuid.New()})
	assert.ErrorIs(t, err, dto.ErrConstraint)
	assert.Empty(t, pool.tx.execs, "journal row is not written for a rejected person")
	assert.False(t, pool.tx.committed)
}

func TestInsertDLQ(t *testing.T) {
	pool := &fakePool{}
	dlq := dto.IntakeDLQ{Topic: "people.intake", Key: "k", Payload: "{broken", Error: "bad json"}

	require.NoError(t, NewRepository(pool).InsertDLQ(context.Background(), dlq))
	require.Len(t, pool.execs, 1)
	assert.Equal(t, []any{"people.intake", "k", "{broken", "bad json"}, pool.execs[0].args)
}

func TestSchemaAndReset(t *testing.T) {
	pool := &fakePool{}
	repo := NewRepository(pool)

	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, repo.ResetAll(context.Background()))
	require.Len(t, pool.execs, 2)
	assert.Contains(t, pool.execs[0].sql, "CREATE TABLE IF NOT EXISTS intake_dlq")
	assert.Contains(t, pool.execs[1].sql, "TRUNCATE intake_events")

	pool.execErr = errors.New("down")
	assert.Error(t, repo.ResetAll(context.Background()))
}
