package analytics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

func central(people []dto.Person) func(*Bundle) {
	var avg, median, meanAge, meanExp dto.Opt[float64]
	if s := salaries(people); len(s) > 0 {
		avg = roundOpt(stat.Mean(s, nil), 0)
		median = roundOpt(quantile(sortedCopy(s), 0.5), 0)
	}
	if a := ages(people); len(a) > 0 {
		meanAge = roundOpt(stat.Mean(a, nil), 1)
	}
	if x := experiences(people); len(x) > 0 {
		meanExp = roundOpt(stat.Mean(x, nil), 1)
	}

	return func(b *Bundle) {
		b.AvgSalary, b.MedianSalary = avg, median
		b.MeanAge, b.MeanExperience = meanAge, meanExp
	}
}
