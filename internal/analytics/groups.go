package analytics

import (
	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

const topPositions = 5

func education(p dto.Person) *string { return p.Education }
func position(p dto.Person) *string  { return p.Position }

func roundedMeans(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = round(v, 0)
	}
	return out
}

func groups(people []dto.Person) func(*Bundle) {
	byEducation := byValueDesc(roundedMeans(groupMeans(people, education)))

	top := byValueDesc(roundedMeans(groupMeans(people, position)))
	if len(top) > topPositions {
		top = top[:topPositions]
	}

	counts := make(map[string]int)
	for _, p := range people {
		if p.Education != nil {
			counts[*p.Education]++
		}
	}
	eduCounts := byValueDesc(counts)

	return func(b *Bundle) {
		b.ByEducation, b.TopPosition, b.EduCounts = byEducation, top, eduCounts
	}
}
