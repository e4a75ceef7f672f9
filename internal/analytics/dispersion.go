package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

func gender(p dto.Person) *string { return p.Gender }

func (e *Engine) dispersion(people []dto.Person) func(*Bundle) {
	d := Dispersion{}
	publish := func(b *Bundle) { b.Dispersion = d }

	d.ReferenceGender = e.cfg.ReferenceGender
	d.ComparedGender = e.cfg.ComparedGender
	d.EduDeviation = Ordered[int]{}

	s := salaries(people)
	if len(s) == 0 {
		return publish
	}
	sorted := sortedCopy(s)

	d.SalaryMin = dto.Some(int(sorted[0]))
	d.SalaryMax = dto.Some(int(sorted[len(sorted)-1]))
	if len(s) >= 2 {
		d.SalaryStd = roundOpt(stat.StdDev(s, nil), 2)
	}

	q1, q2, q3 := int(quantile(sorted, 0.25)), int(quantile(sorted, 0.5)), int(quantile(sorted, 0.75))
	d.Q1, d.Q2, d.Q3 = dto.Some(q1), dto.Some(q2), dto.Some(q3)
	d.IQR = dto.Some(q3 - q1)

	means := groupMeans(people, gender)
	d.MeanReference = round(means[e.cfg.ReferenceGender], 0)
	d.MeanCompared = round(means[e.cfg.ComparedGender], 0)
	d.GenderGap = gap(d.MeanCompared, d.MeanReference)

	cutLow, cutHigh := quantile(sorted, 0.05), quantile(sorted, 0.95)
	for _, v := range s {
		if v <= cutLow {
			d.PctLow++
		}
		if v >= cutHigh {
			d.PctHigh++
		}
	}

	avg := round(stat.Mean(s, nil), 0)
	dev := make(map[string]int)
	for k, m := range groupMeans(people, education) {
		dev[k] = int(round(m, 0) - avg)
	}
	d.EduDeviation = byKey(dev)

	return publish
}

// gap равен compared/reference и нулю при нулевом эталонном среднем.
func gap(compared, reference float64) float64 {
	if reference == 0 {
		return 0
	}
	r := round(compared/reference, 3)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
