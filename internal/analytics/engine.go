// Package analytics считает набор статистик по зарплатам на снимке записей о
// сотрудниках. Каждый показатель считается отдельным защищённым шагом по строкам,
// где есть его входные данные, и сбой одного шага не прерывает остальные.
package analytics

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

const (
	DefaultReferenceGender = "Мужчина"
	DefaultComparedGender  = "Женщина"
)

type Config struct {
	// ReferenceGender это знаменатель гендерного разрыва.
	ReferenceGender string
	ComparedGender  string
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.ReferenceGender == "" {
		cfg.ReferenceGender = DefaultReferenceGender
	}
	if cfg.ComparedGender == "" {
		cfg.ComparedGender = DefaultComparedGender
	}
	return &Engine{cfg: cfg}
}

// step считает свой раздел Bundle и возвращает функцию, которая его публикует.
// Если шаг не завершился штатно, в Bundle ничего не попадает.
type step struct {
	name string
	fn   func(people []dto.Person) func(b *Bundle)
}

// Compute возвращает dto.ErrNoData для пустого снимка.
func (e *Engine) Compute(people []dto.Person) (*Bundle, error) {
	if len(people) == 0 {
		return nil, dto.ErrNoData
	}

	started := time.Now()
	b := &Bundle{Records: len(people)}

	steps := []step{
		{"central", central},
		{"correlation", correlation},
		{"partial_correlation", partialCorrelation},
		{"regression", regression},
		{"corr_matrix", corrMatrix},
		{"scatter", scatter},
		{"box_gender", boxByGender},
		{"age_hist", ageHistogram},
		{"groups", groups},
		{"dispersion", e.dispersion},
	}

	failed := runSteps(steps, people, b)

	log.Debug().
		Int("records", len(people)).
		Int("failed_steps", failed).
		Dur("took", time.Since(started)).
		Msg("analytics computed")

	return b, nil
}

// runSteps публикует успешные шаги и возвращает число упавших.
func runSteps(steps []step, people []dto.Person, b *Bundle) int {
	failed := 0
	for _, s := range steps {
		apply, err := run(s, people)
		if err != nil {
			failed++
			log.Warn().Err(err).Str("step", s.name).Msg("analytics step degraded")
			continue
		}
		apply(b)
	}
	return failed
}

// run изолирует шаг: после паники его показатели остаются недоступными.
func run(s step, people []dto.Person) (apply func(b *Bundle), err error) {
	defer func() {
		if r := recover(); r != nil {
			apply, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	return s.fn(people), nil
}
