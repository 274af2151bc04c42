package submission

type Submission struct {
	ID             string `json:"_id"`
	StudentID      string `json:"studentId"`
	ActivityID     string `json:"activityId"`
	GroupID        string `json:"groupId,omitempty"`
	Content        string `json:"content,omitempty"`
	SubmissionDate string `json:"submissionDate,omitempty"`
	Grade          string `json:"grade,omitempty"`
	Feedback       string `json:"feedback,omitempty"`
	CourseID       string `json:"courseId,omitempty"`
}

type NewSubmission struct {
	StudentID      string `json:"studentId" validate:"notblank"`
	ActivityID     string `json:"activityId" validate:"notblank"`
	GroupID        string `json:"groupId,omitempty"`
	Content        string `json:"content,omitempty"`
	SubmissionDate string `json:"submissionDate,omitempty"`
	CourseID       string `json:"courseId,omitempty"`
}

// UpdateSubmission carries a partial update; student and activity never change.
type UpdateSubmission struct {
	ID             string  `json:"_id" validate:"notblank"`
	GroupID        *string `json:"groupId,omitempty"`
	Content        *string `json:"content,omitempty"`
	SubmissionDate *string `json:"submissionDate,omitempty"`
	Grade          *string `json:"grade,omitempty"`
	Feedback       *string `json:"feedback,omitempty"`
	CourseID       *string `json:"courseId,omitempty"`
}
