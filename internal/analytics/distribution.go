package analytics

import (
	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

const ageBinWidth = 5

func scatter(people []dto.Person) func(*Bundle) {
	points := []Point{}
	for _, p := range people {
		e, okE := p.Experience.Get()
		s, okS := p.Salary.Get()
		if okE && okS {
			points = append(points, Point{Experience: e, Salary: s})
		}
	}
	return func(b *Bundle) { b.Scatter = points }
}

// boxByGender группирует зарплаты по полу в порядке первого появления.
func boxByGender(people []dto.Person) func(*Bundle) {
	index := make(map[string]int)
	out := Ordered[[]float64]{}
	for _, p := range people {
		if p.Gender == nil {
			continue
		}
		i, ok := index[*p.Gender]
		if !ok {
			i = len(out)
			index[*p.Gender] = i
			out = append(out, Entry[[]float64]{Key: *p.Gender, Value: []float64{}})
		}
		if s, ok := p.Salary.Get(); ok {
			out[i].Value = append(out[i].Value, s)
		}
	}
	return func(b *Bundle) { b.BoxByGender = out }
}

// ageHistogram раскладывает возраст по бинам в 5 лет от самого младшего.
// Последний бин закрыт с обеих сторон.
func ageHistogram(people []dto.Person) func(*Bundle) {
	h := Histogram{Edges: []int{}, Counts: []int{}}
	publish := func(b *Bundle) { b.AgeHist = h }

	a := ages(people)
	if len(a) == 0 {
		return publish
	}
	lo, hi := minMax(a)
	start, end := int(lo), int(hi)

	edges := []int{}
	for e := start; e < end+ageBinWidth; e += ageBinWidth {
		edges = append(edges, e)
	}
	if len(edges) < 2 {
		edges = append(edges, edges[0]+ageBinWidth)
	}

	counts := make([]int, len(edges)-1)
	for _, v := range a {
		i := (int(v) - start) / ageBinWidth
		if i >= len(counts) {
			i = len(counts) - 1
		}
		counts[i]++
	}

	h = Histogram{Edges: edges, Counts: counts}
	return publish
}
