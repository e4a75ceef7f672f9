package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

type fakeEvents struct {
	seen      map[uuid.UUID]bool
	stored    []dto.Person
	events    []dto.IntakeEvent
	dlq       []dto.IntakeDLQ
	existsErr error
	admitErr  error
}

func (f *fakeEvents) ExistsMessage(_ context.Context, id uuid.UUID) (bool, error) {
	return f.seen[id], f.existsErr
}

// Admit сохраняет сотрудника и строку журнала вместе: при ошибке не сохраняется ничего.
func (f *fakeEvents) Admit(_ context.Context, p dto.Person, ev dto.IntakeEvent) (int64, error) {
	if f.admitErr != nil {
		return 0, f.admitErr
	}
	if f.seen[ev.MessageID] {
		return 0, dto.ErrAlreadyExists
	}
	f.stored = append(f.stored, p)
	ev.PersonID = int64(len(f.stored))
	f.seen[ev.MessageID] = true
	f.events = append(f.events, ev)
	return ev.PersonID, nil
}

func (f *fakeEvents) InsertDLQ(_ context.Context, d dto.IntakeDLQ) error {
	f.dlq = append(f.dlq, d)
	return nil
}

func newTestHandler() (*intakeHandler, *fakeEvents) {
	ev := &fakeEvents{seen: map[uuid.UUID]bool{}}
	return &intakeHandler{events: ev, log: zerolog.Nop(), commitOnDLQ: true}, ev
}

func message(t *testing.T, env IntakeEnvelope) *sarama.ConsumerMessage {
	t.Helper()
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: "people.intake", Key: []byte("k"), Value: raw, Offset: 3}
}

func validEnvelope() IntakeEnvelope {
	return IntakeEnvelope{
		MessageID: uuid.New(),
		Source:    "hr-portal",
		Payload: dto.Person{
			FirstName:  "Анна",
			LastName:   "Смирнова",
			Age:        dto.Some(31),
			Experience: dto.Some(5),
			Salary:     dto.Some(95000.0),
		},
	}
}

func TestProcess_StoresPersonAndJournal(t *testing.T) {
	h, ev := newTestHandler()

	commit := h.process(context.Background(), message(t, validEnvelope()))

	assert.True(t, commit)
	require.Len(t, ev.stored, 1)
	assert.Equal(t, "Анна", ev.stored[0].FirstName)
	require.Len(t, ev.events, 1)
	assert.EqualValues(t, 1, ev.events[0].PersonID)
	assert.Equal(t, int64(3), ev.events[0].Offset)
	assert.Empty(t, ev.dlq)
}

func TestProcess_DuplicateSkipped(t *testing.T) {
	h, ev := newTestHandler()
	msg := message(t, validEnvelope())

	require.True(t, h.process(context.Background(), msg))
	require.True(t, h.process(context.Background(), msg))

	assert.Len(t, ev.stored, 1)
	assert.Len(t, ev.events, 1)
	assert.Empty(t, ev.dlq)
}

func TestProcess_ConcurrentDuplicateSkipped(t *testing.T) {
	h, ev := newTestHandler()
	ev.admitErr = dto.ErrAlreadyExists

	assert.True(t, h.process(context.Background(), message(t, validEnvelope())))
	assert.Empty(t, ev.stored)
	assert.Empty(t, ev.dlq)
}

func TestProcess_Rejections(t *testing.T) {
	noID := validEnvelope()
	noID.MessageID = uuid.Nil

	badAge := validEnvelope()
	badAge.Payload.Age = dto.Some(7)

	noName := validEnvelope()
	noName.Payload.FirstName = " "

	cases := map[string]*sarama.ConsumerMessage{
		"invalid json":       {Topic: "people.intake", Value: []byte("{nope")},
		"missing message id": message(t, noID),
		"age out of range":   message(t, badAge),
		"missing first name": message(t, noName),
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			h, ev := newTestHandler()

			assert.True(t, h.process(context.Background(), msg))
			assert.Empty(t, ev.stored)
			require.Len(t, ev.dlq, 1)
			assert.Equal(t, string(msg.Value), ev.dlq[0].Payload)
		})
	}
}

func TestProcess_StorageFailureIsRetried(t *testing.T) {
	h, ev := newTestHandler()
	ev.admitErr = errors.New("tx.Exec: connection reset")

	assert.False(t, h.process(context.Background(), message(t, validEnvelope())))
	assert.Empty(t, ev.stored, "journal failure must not leave the person behind")
	assert.Empty(t, ev.dlq, "a record that may still be stored is not dead-lettered")

	h, ev = newTestHandler()
	ev.existsErr = errors.New("connection reset")
	assert.False(t, h.process(context.Background(), message(t, validEnvelope())))
	assert.Empty(t, ev.dlq)
}

func TestProcess_ConstraintGoesToDLQ(t *testing.T) {
	h, ev := newTestHandler()
	ev.admitErr = dto.ErrConstraint

	assert.True(t, h.process(context.Background(), message(t, validEnvelope())))
	assert.Len(t, ev.dlq, 1)
	assert.Empty(t, ev.stored)
}

type fakeSession struct {
	sarama.ConsumerGroupSession
	marked []int64
}

func (s *fakeSession) Context() context.Context { return context.Background() }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	ch chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.ch }

func TestConsumeClaim_MarksCommittedMessages(t *testing.T) {
	h, ev := newTestHandler()
	ev.admitErr = errors.New("down")

	ok := message(t, validEnvelope())
	ok.Offset = 1
	bad := &sarama.ConsumerMessage{Topic: "people.intake", Value: []byte("x"), Offset: 2}

	claim := &fakeClaim{ch: make(chan *sarama.ConsumerMessage, 2)}
	claim.ch <- ok
	claim.ch <- bad
	close(claim.ch)

	sess := &fakeSession{}
	require.NoError(t, h.ConsumeClaim(sess, claim))

	assert.Equal(t, []int64{2}, sess.marked, "storage failure keeps offset 1 uncommitted")
}
