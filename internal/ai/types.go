package ai

// RecommendationKind is the suggested action for a record.
type RecommendationKind string

const (
	RecommendDelete RecommendationKind = "delete"
	RecommendKeep   RecommendationKind = "keep"
	RecommendReview RecommendationKind = "review"
)

// ReasonCategory classifies why a recommendation was made.
type ReasonCategory string

const (
	CategoryDuplicate  ReasonCategory = "duplicate"
	CategoryBroken     ReasonCategory = "broken"
	CategoryOutdated   ReasonCategory = "outdated"
	CategoryLowQuality ReasonCategory = "low_quality"
	CategoryValuable   ReasonCategory = "valuable"
)

// Recommendation is a cleanup recommendation for a single record.
type Recommendation struct {
	RecordID       string             `json:"recordId"`
	Recommendation RecommendationKind `json:"recommendation"`
	Reason         string             `json:"reason"`
	Category       ReasonCategory     `json:"category"`
	Confidence     int                `json:"confidence"` // 0-100
	Accepted       bool               `json:"accepted,omitempty"`
	Rejected       bool               `json:"rejected,omitempty"`
}

// Normalize clamps out-of-range fields returned by the provider.
// Unknown kinds degrade to "review", unknown categories to "low_quality".
func (r *Recommendation) Normalize() {
	switch r.Recommendation {
	case RecommendDelete, RecommendKeep, RecommendReview:
	default:
		r.Recommendation = RecommendReview
	}

	switch r.Category {
	case CategoryDuplicate, CategoryBroken, CategoryOutdated, CategoryLowQuality, CategoryValuable:
	default:
		r.Category = CategoryLowQuality
	}

	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 100 {
		r.Confidence = 100
	}
}

// Accept marks the recommendation accepted. Accepted and rejected are
// mutually exclusive.
func (r *Recommendation) Accept() {
	r.Accepted = true
	r.Rejected = false
}

// Reject marks the recommendation rejected.
func (r *Recommendation) Reject() {
	r.Rejected = true
	r.Accepted = false
}

// SuggestedFolder proposes a folder and the records that belong in it.
type SuggestedFolder struct {
	Name      string   `json:"name"`
	Path      []string `json:"path"`
	Rationale string   `json:"rationale"`
	RecordIDs []string `json:"recordIds"`
}
