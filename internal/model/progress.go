package model

// TimeTrackingLink connects a project to one Hackatime project and carries
// its reported hours. HoursOverride is set only by reviewers; when present it
// is the sole source of truth for that link.
type TimeTrackingLink struct {
	ProjectName   string   `json:"projectName"`
	RawHours      float64  `json:"rawHours"`
	HoursOverride *float64 `json:"hoursOverride,omitempty"`
}

// Project is a user's submission with its review flags and connected
// time-tracking links. RawHours is the legacy single-field hour count, used
// only when a project has no links at all.
type Project struct {
	ProjectID      string             `json:"projectID"`
	UserID         string             `json:"userID"`
	Shipped        bool               `json:"shipped"`
	Viral          bool               `json:"viral"`
	RawHours       float64            `json:"rawHours"`
	HackatimeLinks []TimeTrackingLink `json:"hackatimeLinks"`
}

// ProgressMetrics is the derived island-progress breakdown for one user.
// It is recomputed on every read and never persisted.
type ProgressMetrics struct {
	ShippedHours                 float64 `json:"shippedHours"`
	ViralHours                   float64 `json:"viralHours"`
	OtherHours                   float64 `json:"otherHours"`
	TotalHours                   float64 `json:"totalHours"`
	TotalPercentage              float64 `json:"totalPercentage"`
	RawHours                     float64 `json:"rawHours"`
	Currency                     int     `json:"currency"`
	PurchasedProgressHours       float64 `json:"purchasedProgressHours"`
	TotalProgressWithPurchased   float64 `json:"totalProgressWithPurchased"`
	TotalPercentageWithPurchased float64 `json:"totalPercentageWithPurchased"`
}

// EconomySnapshot holds the per-user counters tracked outside the progress
// calculation itself.
type EconomySnapshot struct {
	PurchasedProgressHours float64 `json:"purchasedProgressHours"`
	TotalShellsSpent       int     `json:"totalShellsSpent"`
	AdminShellAdjustment   int     `json:"adminShellAdjustment"`
}
