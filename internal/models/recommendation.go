package models

// Recommendation categories. The model may return any string; these are the
// ones the service itself produces or asks for.
const (
	CategoryTreatment  = "tedavi"
	CategoryPruning    = "budama"
	CategoryPrevention = "önleme"
	CategoryChemical   = "kimyasal_ilac"
	CategoryError      = "hata"
)

// Recommendation is one actionable suggestion tied to a diagnosis
type Recommendation struct {
	ID                 int64    `json:"id" db:"id" yaml:"id,omitempty"`
	AnalysisID         int64    `json:"analysis_id" db:"analysis_id" yaml:"analysis_id,omitempty"`
	Category           string   `json:"type" db:"recommendation_type" yaml:"type"`
	Description        string   `json:"description" db:"description" yaml:"description"`
	Priority           int      `json:"priority" db:"priority" yaml:"priority"` // 1-5, 5 most urgent
	EstimatedCost      *float64 `json:"estimated_cost,omitempty" db:"estimated_cost" yaml:"estimated_cost,omitempty"`
	ImplementationDate Date     `json:"implementation_date" db:"implementation_date" yaml:"implementation_date"`
}

// Treatment is a canned chemical-treatment suggestion
type Treatment struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}
