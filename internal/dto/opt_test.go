package dto

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpt_AbsentIsNotZero(t *testing.T) {
	var age Opt[int]
	_, ok := age.Get()
	assert.False(t, ok)
	assert.Nil(t, age.Any())
	_, ok = age.Float()
	assert.False(t, ok)

	zero := Some(0)
	v, ok := zero.Get()
	assert.True(t, ok)
	assert.Equal(t, 0, v)
	assert.Equal(t, int64(0), zero.Any())

	f, ok := Some(7).Float()
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)
}

func TestOpt_JSON(t *testing.T) {
	p := Person{ID: 1, FirstName: "Анна", LastName: "Иванова", Age: Some(30), Salary: None[float64]()}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"age":30`)
	assert.Contains(t, string(data), `"salary":null`)
	assert.Contains(t, string(data), `"experience":null`)

	var back Person
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p.Age, back.Age)
	assert.False(t, back.Salary.Valid)
}

func TestOpt_NonFiniteEncodesNull(t *testing.T) {
	data, err := json.Marshal(Some(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestOpt_Scan(t *testing.T) {
	var salary Opt[float64]
	require.NoError(t, salary.Scan(float64(1500.5)))
	assert.Equal(t, Some(1500.5), salary)

	require.NoError(t, salary.Scan(nil))
	assert.False(t, salary.Valid)

	var age Opt[int]
	require.NoError(t, age.Scan(int64(42)))
	assert.Equal(t, Some(42), age)

	require.NoError(t, age.Scan([]byte("35")))
	assert.Equal(t, Some(35), age)

	assert.Error(t, age.Scan(true))
	assert.Error(t, age.Scan("abc"))
}

func TestOpt_Value(t *testing.T) {
	v, err := Some(12).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(12), v)

	v, err = None[float64]().Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
