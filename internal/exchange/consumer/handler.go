package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

// IntakeEnvelope сотрудник, присланный через intake-топик
type IntakeEnvelope struct {
	MessageID uuid.UUID  `json:"message_id"`
	Source    string     `json:"source"`
	Payload   dto.Person `json:"payload"`
}

type intakeHandler struct {
	events      EventsRepository
	log         zerolog.Logger
	commitOnDLQ bool
}

// NewIntakeRunner читает intake-топик и добавляет сотрудников в хранилище.
// Повторные message_id пропускаются, отклонённые сообщения уходят в DLQ и
// коммитятся.
func NewIntakeRunner(
	bootstrap string,
	topic string,
	groupID string,
	events EventsRepository,
	log zerolog.Logger,
) *Runner {
	h := &intakeHandler{
		events:      events,
		log:         log.With().Str("consumer", "intake").Logger(),
		commitOnDLQ: true,
	}

	return newRunner(bootstrap, groupID, topic, h, log)
}

func (h *intakeHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *intakeHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *intakeHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if h.process(sess.Context(), msg) {
			sess.MarkMessage(msg, "")
		}
	}
	return nil
}

// process сообщает, можно ли коммитить offset сообщения.
func (h *intakeHandler) process(ctx context.Context, msg *sarama.ConsumerMessage) bool {
	var env IntakeEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		h.toDLQ(ctx, msg, fmt.Sprintf("invalid_json: %v", err))
		return h.commitOnDLQ
	}

	if env.MessageID == uuid.Nil {
		h.toDLQ(ctx, msg, "missing required field message_id")
		return h.commitOnDLQ
	}

	exists, err := h.events.ExistsMessage(ctx, env.MessageID)
	if err != nil {
		// сбой хранилища не вина сообщения, ждём повторной доставки
		h.log.Error().Err(err).Str("message_id", env.MessageID.String()).Msg("events.ExistsMessage")
		return false
	}

	if exists {
		h.log.Info().
			Str("message_id", env.MessageID.String()).
			Msg("duplicate message, skip (idempotency)")
		return true
	}

	person := env.Payload
	person.ID = 0
	if errs := dto.ValidatePerson(person); len(errs) > 0 {
		reasons := make([]string, 0, len(errs))
		for _, e := range errs {
			reasons = append(reasons, e.Error())
		}
		h.toDLQ(ctx, msg, strings.Join(reasons, "; "))
		return h.commitOnDLQ
	}

	id, err := h.events.Admit(ctx, person, dto.IntakeEvent{
		MessageID: env.MessageID,
		Topic:     msg.Topic,
		Key:       string(msg.Key),
		Partition: int(msg.Partition),
		Offset:    msg.Offset,
		Payload:   append([]byte(nil), msg.Value...),
	})
	switch {
	case errors.Is(err, dto.ErrAlreadyExists):
		// параллельная доставка того же сообщения успела раньше
		h.log.Info().Str("message_id", env.MessageID.String()).Msg("duplicate message, skip (idempotency)")
		return true
	case errors.Is(err, dto.ErrConstraint):
		h.toDLQ(ctx, msg, fmt.Sprintf("events.Admit: %v", err))
		return h.commitOnDLQ
	case err != nil:
		h.log.Error().Err(err).Str("message_id", env.MessageID.String()).Msg("events.Admit")
		return false
	}

	h.log.Info().
		Str("message_id", env.MessageID.String()).
		Int64("person_id", id).
		Msg("person received from intake")

	return true
}

func (h *intakeHandler) toDLQ(ctx context.Context, msg *sarama.ConsumerMessage, reason string) {
	err := h.events.InsertDLQ(ctx, dto.IntakeDLQ{
		Topic:   msg.Topic,
		Key:     string(msg.Key),
		Payload: string(msg.Value),
		Error:   reason,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("events.InsertDLQ")
	}

	h.log.Warn().
		Str("topic", msg.Topic).
		Int32("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Str("reason", reason).
		Msg("message sent to DLQ")
}
