package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

// PeopleProducer публикует события хранилища записей в один топик.
type PeopleProducer struct {
	sp     sarama.SyncProducer
	topic  string
	source string
	log    zerolog.Logger
	now    func() time.Time
}

type Config struct {
	Topic  string
	Source string
}

func NewPeopleProducer(sp sarama.SyncProducer, cfg Config, log zerolog.Logger) *PeopleProducer {
	return &PeopleProducer{
		sp:     sp,
		topic:  cfg.Topic,
		source: cfg.Source,
		log:    log.With().Str("component", "PeopleProducer").Logger(),
		now:    time.Now,
	}
}

// NewSyncProducer подключается к брокерам с настройками для топика событий.
func NewSyncProducer(bootstrap, clientID string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Version = sarama.V3_3_2_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1

	sp, err := sarama.NewSyncProducer([]string{bootstrap}, cfg)
	if err != nil {
		return nil, fmt.Errorf("sarama.NewSyncProducer: %w", err)
	}

	return sp, nil
}

func (p *PeopleProducer) Close() error {
	if p == nil || p.sp == nil {
		return nil
	}
	return p.sp.Close()
}

func (p *PeopleProducer) PublishCreated(ctx context.Context, person dto.Person) error {
	return publish(ctx, p, KindPersonCreated, PersonCreatedPayload{Person: person})
}

func (p *PeopleProducer) PublishImported(ctx context.Context, file string, imported int, artifactKey string) error {
	return publish(ctx, p, KindPeopleImported, PeopleImportedPayload{
		File:        file,
		Imported:    imported,
		ArtifactKey: artifactKey,
	})
}

func (p *PeopleProducer) PublishDeleted(ctx context.Context, deleted int64) error {
	return publish(ctx, p, KindPeopleDeleted, PeopleDeletedPayload{Deleted: deleted})
}

func publish[T any](ctx context.Context, p *PeopleProducer, kind string, payload T) error {
	messageID := uuid.New()

	body, err := json.Marshal(Envelope[T]{
		Kind:      kind,
		MessageID: messageID.String(),
		Payload:   payload,
		Timestamp: p.now().UTC(),
		Source:    p.source,
	})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	return p.send(ctx, messageID.String(), body, map[string]string{
		"event-kind":   kind,
		"source":       p.source,
		"content-type": "application/json",
	})
}

func (p *PeopleProducer) send(_ context.Context, key string, value []byte, headers map[string]string) error {
	if p == nil || p.sp == nil {
		return errors.New("sync producer is not initialized")
	}

	var hs []sarama.RecordHeader
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(value),
		Headers: hs,
	}

	part, off, err := p.sp.SendMessage(msg)
	if err != nil {
		p.log.Error().
			Err(err).
			Str("topic", p.topic).
			Str("key", key).
			Int("bytes", len(value)).
			Msg("failed to send kafka message")
		return fmt.Errorf("send kafka message: %w", err)
	}

	p.log.Info().
		Str("topic", p.topic).
		Str("key", key).
		Int32("partition", part).
		Int64("offset", off).
		Int("bytes", len(value)).
		Msg("kafka message sent")
	return nil
}
