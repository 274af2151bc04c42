package category

// Grouping methods
const (
	GroupingManual       = "manual"
	GroupingRandom       = "random"
	GroupingSelfAssigned = "selfAssigned"
)

type Category struct {
	ID             string `json:"_id"`
	CourseID       string `json:"courseId"`
	Name           string `json:"name"`
	GroupingMethod string `json:"groupingMethod"`
	GroupSize      int    `json:"groupSize"`
}

type NewCategory struct {
	CourseID       string `json:"courseId" validate:"notblank"`
	Name           string `json:"name" validate:"notblank"`
	GroupingMethod string `json:"groupingMethod" validate:"oneof=manual random selfAssigned"`
	GroupSize      int    `json:"groupSize" validate:"gte=1"`
}

// UpdateCategory carries a partial update; nil fields are left untouched.
type UpdateCategory struct {
	ID             string  `json:"_id" validate:"notblank"`
	Name           *string `json:"name,omitempty" validate:"omitempty,notblank"`
	GroupingMethod *string `json:"groupingMethod,omitempty" validate:"omitempty,oneof=manual random selfAssigned"`
	GroupSize      *int    `json:"groupSize,omitempty" validate:"omitempty,gte=1"`
}
