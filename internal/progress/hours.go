// Package progress computes island-progress metrics and shell earnings from
// a user's projects and their time-tracking links.
package progress

import (
	"math"

	"github.com/hackclub/shipwrecked-sub001/internal/model"
)

// EffectiveLinkHours returns the hours a single link counts for: the
// reviewer override when present, otherwise the raw reported hours.
func EffectiveLinkHours(link model.TimeTrackingLink) float64 {
	if link.HoursOverride != nil {
		return *link.HoursOverride
	}
	if math.IsNaN(link.RawHours) {
		return 0
	}
	return link.RawHours
}

// ApprovedLinkHours returns the reviewer-approved hours for a link. Raw
// hours alone never count as approved.
func ApprovedLinkHours(link model.TimeTrackingLink) float64 {
	if link.HoursOverride != nil {
		return *link.HoursOverride
	}
	return 0
}

// EffectiveHours sums effective hours over a project's links. A project with
// no links falls back to its legacy RawHours field when positive.
func EffectiveHours(p *model.Project) float64 {
	if p == nil {
		return 0
	}
	if len(p.HackatimeLinks) == 0 {
		if p.RawHours > 0 {
			return p.RawHours
		}
		return 0
	}
	var sum float64
	for _, link := range p.HackatimeLinks {
		sum += EffectiveLinkHours(link)
	}
	return sum
}

// ApprovedHours sums approved hours over a project's links.
func ApprovedHours(p *model.Project) float64 {
	if p == nil {
		return 0
	}
	var sum float64
	for _, link := range p.HackatimeLinks {
		sum += ApprovedLinkHours(link)
	}
	return sum
}
