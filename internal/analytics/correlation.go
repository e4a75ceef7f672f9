package analytics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

func pearson(x, y []float64) dto.Opt[float64] {
	if len(x) < 2 {
		return dto.None[float64]()
	}
	return roundOpt(stat.Correlation(x, y, nil), 3)
}

func correlation(people []dto.Person) func(*Bundle) {
	exp, sal := pairs(people)
	r := pearson(exp, sal)
	return func(b *Bundle) { b.CorrSalaryExperience = r }
}

var matrixColumns = []string{"salary", "experience", "age"}

// corrMatrix считает корреляции зарплаты, стажа и возраста по строкам, где заданы все три.
func corrMatrix(people []dto.Person) func(*Bundle) {
	var cols [3][]float64
	for _, p := range people {
		s, okS := p.Salary.Float()
		e, okE := p.Experience.Float()
		a, okA := p.Age.Float()
		if !okS || !okE || !okA {
			continue
		}
		cols[0] = append(cols[0], s)
		cols[1] = append(cols[1], e)
		cols[2] = append(cols[2], a)
	}

	m := make(CorrMatrix, len(matrixColumns))
	for i, ci := range matrixColumns {
		m[ci] = make(map[string]dto.Opt[float64], len(matrixColumns))
		for j, cj := range matrixColumns {
			m[ci][cj] = pearson(cols[i], cols[j])
		}
	}
	return func(b *Bundle) { b.CorrMatrix = m }
}

// categoryCodes нумерует различные значения по порядку сортировки, пустые получают -1.
func categoryCodes(values []*string) []float64 {
	distinct := make(map[string]struct{})
	for _, v := range values {
		if v != nil {
			distinct[*v] = struct{}{}
		}
	}

	codes := make(map[string]int, len(distinct))
	for i, e := range byKey(distinct) {
		codes[e.Key] = i
	}

	out := make([]float64, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = -1
			continue
		}
		out[i] = float64(codes[*v])
	}
	return out
}

// pinvTolerance совпадает с относительным порогом numpy при псевдообращении
// симметричной матрицы.
const pinvTolerance = 1e-15

func partialCorrelation(people []dto.Person) func(*Bundle) {
	r, p := partial(people)
	return func(b *Bundle) { b.PartialCorr, b.PartialCorrP = r, p }
}

// partial считает частную корреляцию стажа и зарплаты при контроле образования
// и должности через псевдообратную ковариационную матрицу.
func partial(people []dto.Person) (corr, pValue dto.Opt[float64]) {
	var (
		exp, sal []float64
		edu, pos []*string
	)
	for _, p := range people {
		e, okE := p.Experience.Float()
		s, okS := p.Salary.Float()
		if !okE || !okS {
			continue
		}
		exp = append(exp, e)
		sal = append(sal, s)
		edu = append(edu, p.Education)
		pos = append(pos, p.Position)
	}

	n := len(exp)
	if n < 3 {
		return corr, pValue
	}

	const k = 4
	eduCodes, posCodes := categoryCodes(edu), categoryCodes(pos)
	data := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		data.SetRow(i, []float64{exp[i], sal[i], eduCodes[i], posCodes[i]})
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	var eig mat.EigenSym
	if !eig.Factorize(&cov, true) {
		return corr, pValue
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	largest := 0.0
	for _, v := range values {
		largest = math.Max(largest, math.Abs(v))
	}
	cutoff := pinvTolerance * largest

	pinv := func(i, j int) float64 {
		var sum float64
		for c, v := range values {
			if math.Abs(v) <= cutoff {
				continue
			}
			sum += vectors.At(i, c) * vectors.At(j, c) / v
		}
		return sum
	}

	r := -pinv(0, 1) / math.Sqrt(pinv(0, 0)*pinv(1, 1))
	corr = roundOpt(r, 3)
	if !corr.Valid {
		return corr, pValue
	}

	dof := float64(n - 2 - 2)
	if dof <= 0 {
		return corr, pValue
	}
	t := r * math.Sqrt(dof/(1-r*r))
	pValue = roundOpt(2*distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}.Survival(math.Abs(t)), 3)
	return corr, pValue
}
