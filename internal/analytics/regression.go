package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

// regression подбирает salary = intercept + slope*experience методом наименьших квадратов.
func regression(people []dto.Person) func(*Bundle) {
	r := Regression{Line: []Line{}}
	publish := func(b *Bundle) { b.Regression = r }

	x, y := pairs(people)
	n := len(x)
	if n < 2 {
		return publish
	}

	mx := stat.Mean(x, nil)
	var sxx float64
	for _, v := range x {
		sxx += (v - mx) * (v - mx)
	}
	if sxx == 0 {
		return publish
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)

	intercept := roundOpt(alpha, 0)
	slope := roundOpt(beta, 2)
	if !intercept.Valid || !slope.Valid {
		return publish
	}
	r.Intercept = intercept
	r.Slope = slope
	r.R2 = roundOpt(stat.RSquared(x, y, nil, alpha, beta), 3)
	r.SlopeP = slopePValue(x, y, alpha, beta, sxx)

	lo, hi := minMax(x)
	r.Line = []Line{
		{X: lo, Y: intercept.V + slope.V*lo},
		{X: hi, Y: intercept.V + slope.V*hi},
	}

	return publish
}

// slopePValue: двусторонний t-тест наклона против нуля.
func slopePValue(x, y []float64, alpha, beta, sxx float64) dto.Opt[float64] {
	dof := len(x) - 2
	if dof <= 0 {
		return dto.None[float64]()
	}

	var ssr float64
	for i := range x {
		res := y[i] - (alpha + beta*x[i])
		ssr += res * res
	}
	se := math.Sqrt(ssr / float64(dof) / sxx)
	if se == 0 {
		if beta == 0 {
			return dto.None[float64]()
		}
		return dto.Some(0.0)
	}

	t := beta / se
	p := 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dof)}.Survival(math.Abs(t))
	return roundOpt(p, 3)
}
