package analytics

import (
	"math"
	"sort"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

// round округляет до заданного числа знаков, половину к чётному.
func round(x float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.RoundToEven(x*p) / p
}

// roundOpt это round для значения, которое может быть NaN или Inf.
func roundOpt(x float64, decimals int) dto.Opt[float64] {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return dto.None[float64]()
	}
	return dto.Some(round(x, decimals))
}

// quantile линейно интерполирует между соседними рангами отсортированных данных.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := q * float64(n-1)
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

func sortedCopy(x []float64) []float64 {
	out := append([]float64(nil), x...)
	sort.Float64s(out)
	return out
}

func salaries(people []dto.Person) []float64 {
	out := make([]float64, 0, len(people))
	for _, p := range people {
		if v, ok := p.Salary.Get(); ok {
			out = append(out, v)
		}
	}
	return out
}

func ages(people []dto.Person) []float64 {
	out := make([]float64, 0, len(people))
	for _, p := range people {
		if v, ok := p.Age.Float(); ok {
			out = append(out, v)
		}
	}
	return out
}

func experiences(people []dto.Person) []float64 {
	out := make([]float64, 0, len(people))
	for _, p := range people {
		if v, ok := p.Experience.Float(); ok {
			out = append(out, v)
		}
	}
	return out
}

// pairs возвращает стаж и зарплату строк, где заданы оба поля.
func pairs(people []dto.Person) (exp, sal []float64) {
	for _, p := range people {
		e, okE := p.Experience.Float()
		s, okS := p.Salary.Get()
		if okE && okS {
			exp = append(exp, e)
			sal = append(sal, s)
		}
	}
	return exp, sal
}

func minMax(x []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range x {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// groupMeans считает среднюю зарплату по непустому ключу. Группы без зарплат пропускаются.
func groupMeans(people []dto.Person, key func(dto.Person) *string) map[string]float64 {
	sum := make(map[string]float64)
	cnt := make(map[string]int)
	for _, p := range people {
		k := key(p)
		s, ok := p.Salary.Get()
		if k == nil || !ok {
			continue
		}
		sum[*k] += s
		cnt[*k]++
	}

	out := make(map[string]float64, len(sum))
	for k, s := range sum {
		out[k] = s / float64(cnt[k])
	}
	return out
}

// byValueDesc сортирует по убыванию значения, затем по ключу.
func byValueDesc[V int | float64](m map[string]V) Ordered[V] {
	out := make(Ordered[V], 0, len(m))
	for k, v := range m {
		out = append(out, Entry[V]{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func byKey[V any](m map[string]V) Ordered[V] {
	out := make(Ordered[V], 0, len(m))
	for k, v := range m {
		out = append(out, Entry[V]{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
