package dto

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type Number interface {
	~int | ~int64 | ~float64
}

// Opt числовое значение, которое может отсутствовать. Нулевой Opt пуст, и
// пустое значение никогда не читается как ноль. В JSON пустое значение это null.
type Opt[T Number] struct {
	V     T
	Valid bool
}

func Some[T Number](v T) Opt[T] {
	return Opt[T]{V: v, Valid: true}
}

func None[T Number]() Opt[T] {
	return Opt[T]{}
}

// Get возвращает значение и признак его наличия.
func (o Opt[T]) Get() (T, bool) {
	return o.V, o.Valid
}

// Float возвращает значение как float64 для статистики.
func (o Opt[T]) Float() (float64, bool) {
	return float64(o.V), o.Valid
}

// Any возвращает nil или значение, приведённое к int64/float64, для аргумента запроса.
func (o Opt[T]) Any() any {
	if !o.Valid {
		return nil
	}
	switch v := any(o.V).(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return v
	default:
		return float64(o.V)
	}
}

func (o Opt[T]) String() string {
	if !o.Valid {
		return ""
	}
	return fmt.Sprint(o.V)
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	if f := float64(o.V); math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(o.V)
}

func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Scan реализует sql.Scanner, его понимают и pgx, и database/sql.
func (o *Opt[T]) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*o = Opt[T]{}
	case int64:
		*o = Some(T(v))
	case int32:
		*o = Some(T(v))
	case float64:
		*o = Some(T(v))
	case float32:
		*o = Some(T(v))
	case []byte:
		return o.scanText(string(v))
	case string:
		return o.scanText(v)
	default:
		return fmt.Errorf("dto.Opt: unsupported scan type %T", src)
	}
	return nil
}

func (o *Opt[T]) scanText(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("dto.Opt: %w", err)
	}
	*o = Some(T(f))
	return nil
}

// Value реализует driver.Valuer.
func (o Opt[T]) Value() (driver.Value, error) {
	return o.Any(), nil
}
