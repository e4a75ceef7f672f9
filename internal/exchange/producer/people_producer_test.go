package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

func newTestProducer(t *testing.T) (*PeopleProducer, *mocks.SyncProducer) {
	t.Helper()
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	sp := mocks.NewSyncProducer(t, cfg)

	p := NewPeopleProducer(sp, Config{Topic: "people.events", Source: "people-analytics"}, zerolog.Nop())
	p.now = func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) }
	return p, sp
}

func TestPublishCreated(t *testing.T) {
	p, sp := newTestProducer(t)
	defer func() { require.NoError(t, p.Close()) }()

	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var env Envelope[PersonCreatedPayload]
		if err := json.Unmarshal(val, &env); err != nil {
			return err
		}
		if env.Kind != KindPersonCreated || env.Payload.Person.FirstName != "Анна" || env.Source != "people-analytics" {
			return errors.New("unexpected envelope")
		}
		if env.MessageID == "" || !env.Timestamp.Equal(p.now()) {
			return errors.New("missing message metadata")
		}
		return nil
	})

	err := p.PublishCreated(context.Background(), dto.Person{ID: 7, FirstName: "Анна", LastName: "Смирнова"})
	assert.NoError(t, err)
}

func TestPublishImportedAndDeleted(t *testing.T) {
	p, sp := newTestProducer(t)
	defer func() { require.NoError(t, p.Close()) }()

	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var env Envelope[PeopleImportedPayload]
		if err := json.Unmarshal(val, &env); err != nil {
			return err
		}
		if env.Kind != KindPeopleImported || env.Payload.Imported != 12 || env.Payload.File != "staff.csv" {
			return errors.New("unexpected import envelope")
		}
		return nil
	})
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var env Envelope[PeopleDeletedPayload]
		if err := json.Unmarshal(val, &env); err != nil {
			return err
		}
		if env.Kind != KindPeopleDeleted || env.Payload.Deleted != 12 {
			return errors.New("unexpected delete envelope")
		}
		return nil
	})

	require.NoError(t, p.PublishImported(context.Background(), "staff.csv", 12, "uploads/x/staff.csv"))
	require.NoError(t, p.PublishDeleted(context.Background(), 12))
}

func TestPublishFailure(t *testing.T) {
	p, sp := newTestProducer(t)
	defer func() { require.NoError(t, p.Close()) }()

	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := p.PublishDeleted(context.Background(), 1)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestNilProducer(t *testing.T) {
	var p *PeopleProducer
	assert.Error(t, p.send(context.Background(), "k", nil, nil))
	assert.NoError(t, p.Close())
}
