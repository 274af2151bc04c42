package activity

type Activity struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	CourseID    string `json:"courseId"`
	CategoryID  string `json:"categoryId"`
	GroupID     string `json:"groupId,omitempty"`
}

type NewActivity struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	CourseID    string `json:"courseId" validate:"notblank"`
	CategoryID  string `json:"categoryId" validate:"notblank"`
	GroupID     string `json:"groupId,omitempty"`
}

// UpdateActivity carries a partial update; the course of an activity never changes.
type UpdateActivity struct {
	ID          string  `json:"_id" validate:"notblank"`
	Title       *string `json:"title,omitempty" validate:"omitempty,notblank"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	CategoryID  *string `json:"categoryId,omitempty" validate:"omitempty,notblank"`
	GroupID     *string `json:"groupId,omitempty"`
}
