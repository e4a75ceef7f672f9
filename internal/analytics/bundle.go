package analytics

import (
	"bytes"
	"encoding/json"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

// Bundle содержит все показатели одного расчёта. Отсутствующее значение
// означает, что показатель не удалось посчитать по выборке.
type Bundle struct {
	Records int `json:"records"`

	AvgSalary      dto.Opt[float64] `json:"avg_salary"`
	MedianSalary   dto.Opt[float64] `json:"median_salary"`
	MeanAge        dto.Opt[float64] `json:"mean_age"`
	MeanExperience dto.Opt[float64] `json:"mean_experience"`

	CorrSalaryExperience dto.Opt[float64] `json:"corr_salary_experience"`
	PartialCorr          dto.Opt[float64] `json:"partial_corr"`
	PartialCorrP         dto.Opt[float64] `json:"partial_corr_p"`

	Regression Regression `json:"regression"`

	CorrMatrix  CorrMatrix         `json:"corr_matrix"`
	Scatter     []Point            `json:"scatter"`
	BoxByGender Ordered[[]float64] `json:"box_gender"`
	AgeHist     Histogram          `json:"age_hist"`
	ByEducation Ordered[float64]   `json:"by_education"`
	TopPosition Ordered[float64]   `json:"top_positions"`
	EduCounts   Ordered[int]       `json:"education_counts"`
	Dispersion  Dispersion         `json:"dispersion"`
}

// Regression это МНК-регрессия зарплаты по стажу.
type Regression struct {
	Intercept dto.Opt[float64] `json:"intercept"`
	Slope     dto.Opt[float64] `json:"slope"`
	SlopeP    dto.Opt[float64] `json:"slope_p"`
	R2        dto.Opt[float64] `json:"r2"`
	Line      []Line           `json:"line"`
}

type Line struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point это пара (стаж, зарплата) для диаграммы рассеяния.
type Point struct {
	Experience int     `json:"experience"`
	Salary     float64 `json:"salary"`
}

// Histogram: границ бинов на одну больше, чем счётчиков.
type Histogram struct {
	Edges  []int `json:"x"`
	Counts []int `json:"y"`
}

// CorrMatrix индексируется сначала столбцом, затем строкой.
type CorrMatrix map[string]map[string]dto.Opt[float64]

type Dispersion struct {
	SalaryMin dto.Opt[int]     `json:"salary_min"`
	SalaryMax dto.Opt[int]     `json:"salary_max"`
	SalaryStd dto.Opt[float64] `json:"salary_std"`
	Q1        dto.Opt[int]     `json:"q1"`
	Q2        dto.Opt[int]     `json:"q2"`
	Q3        dto.Opt[int]     `json:"q3"`
	IQR       dto.Opt[int]     `json:"iqr"`

	ReferenceGender string  `json:"reference_gender"`
	ComparedGender  string  `json:"compared_gender"`
	MeanReference   float64 `json:"mean_reference"`
	MeanCompared    float64 `json:"mean_compared"`
	GenderGap       float64 `json:"gender_gap"`

	PctLow       int          `json:"pct_low"`
	PctHigh      int          `json:"pct_high"`
	EduDeviation Ordered[int] `json:"edu_deviation"`
}

// Entry это один ключ в Ordered.
type Entry[V any] struct {
	Key   string
	Value V
}

// Ordered это словарь, который сохраняет порядок вставки при кодировании в JSON-объект.
type Ordered[V any] []Entry[V]

func (o Ordered[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get возвращает значение по ключу.
func (o Ordered[V]) Get(key string) (V, bool) {
	for _, e := range o {
		if e.Key == key {
			return e.Value, true
		}
	}
	var zero V
	return zero, false
}
