package progress

import (
	"math"
	"sort"

	"github.com/hackclub/shipwrecked-sub001/internal/model"
)

const (
	// perProjectCap is the most hours one project can contribute to the goal.
	perProjectCap = 15.0
	// unapprovedCap keeps an unshipped or unapproved project from ever
	// reaching the full per-project cap.
	unapprovedCap = 14.75
	// goalHours is 100% island progress.
	goalHours = 60.0
	// topProjectCount is how many projects count toward the percentage.
	topProjectCount = 4
)

// shellsPerHour is the shell payout per approved hour: φ·10.
var shellsPerHour = (1 + math.Sqrt(5)) / 2 * 10

// CalculateMetrics reduces a user's full project list to their progress and
// currency breakdown. purchasedProgressHours flows through into the
// with-purchased totals only; it never touches the hour buckets.
//
// The percentage is gated by the top-4 rule while currency runs over every
// project, so the two walks are deliberately separate.
func CalculateMetrics(projects []model.Project, purchasedProgressHours float64) model.ProgressMetrics {
	type scored struct {
		project *model.Project
		hours   float64
	}
	ranked := make([]scored, len(projects))
	for i := range projects {
		ranked[i] = scored{project: &projects[i], hours: EffectiveHours(&projects[i])}
	}
	// Stable sort keeps the original order for equal hours, which fixes the
	// top-4 boundary tie-break.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].hours > ranked[j].hours
	})

	topFour := make(map[*model.Project]bool, topProjectCount)
	for i := 0; i < len(ranked) && i < topProjectCount; i++ {
		topFour[ranked[i].project] = true
	}

	var m model.ProgressMetrics
	for i := 0; i < len(ranked) && i < topProjectCount; i++ {
		p := ranked[i].project
		capped := math.Min(ranked[i].hours, perProjectCap)
		approved := ApprovedHours(p)
		switch {
		case p.Viral && approved > 0:
			m.ViralHours += capped
		case p.Shipped && approved > 0:
			m.ShippedHours += capped
		default:
			m.OtherHours += math.Min(capped, unapprovedCap)
		}
	}

	m.TotalHours = math.Min(m.ShippedHours+m.ViralHours+m.OtherHours, goalHours)
	m.TotalPercentage = math.Min(m.TotalHours/goalHours*100, 100)

	var rawSum, currency float64
	for _, s := range ranked {
		rawSum += s.hours
		approved := ApprovedHours(s.project)
		if !s.project.Shipped || approved <= 0 {
			continue
		}
		if topFour[s.project] {
			// A favorite project only earns shells on hours beyond its
			// capped allotment; the first 15 already bought progress.
			currency += math.Max(0, approved-perProjectCap) * shellsPerHour
		} else {
			currency += approved * shellsPerHour
		}
	}
	m.RawHours = math.Round(rawSum)
	m.Currency = int(math.Floor(currency))

	m.PurchasedProgressHours = purchasedProgressHours
	m.TotalProgressWithPurchased = math.Min(m.TotalHours+purchasedProgressHours, goalHours)
	m.TotalPercentageWithPurchased = math.Min(m.TotalProgressWithPurchased/goalHours*100, 100)
	return m
}
