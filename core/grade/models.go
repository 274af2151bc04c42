package grade

type Grade struct {
	ID           string             `json:"_id"`
	AssessmentID string             `json:"assessmentId"`
	ActivityID   string             `json:"activityId"`
	CourseID     string             `json:"courseId"`
	GroupID      string             `json:"groupId"`
	StudentID    string             `json:"studentId"`
	Criterias    map[string]float64 `json:"criterias"`
	FinalGrade   float64            `json:"finalGrade"`
	Feedback     string             `json:"feedback,omitempty"`
	GradedBy     string             `json:"gradedBy"`
	GradedAt     string             `json:"gradedAt,omitempty"`
}

// Record is the full set of writable grade columns.
type Record struct {
	AssessmentID string             `json:"assessmentId" validate:"notblank"`
	ActivityID   string             `json:"activityId" validate:"notblank"`
	CourseID     string             `json:"courseId" validate:"notblank"`
	GroupID      string             `json:"groupId"`
	StudentID    string             `json:"studentId" validate:"notblank"`
	Criterias    map[string]float64 `json:"criterias" validate:"dive,keys,notblank,endkeys,gte=0,lte=100"`
	FinalGrade   float64            `json:"finalGrade" validate:"gte=0,lte=100"`
	Feedback     string             `json:"feedback,omitempty"`
	GradedBy     string             `json:"gradedBy" validate:"notblank"`
	GradedAt     string             `json:"gradedAt,omitempty"`
}

// SaveGradeInput is an upsert request. GradeID forces an update of that row;
// AssessmentID defaults to ActivityID.
type SaveGradeInput struct {
	GradeID      string
	AssessmentID string
	ActivityID   string
	CourseID     string
	GroupID      string
	StudentID    string
	Criterias    map[string]float64
	FinalGrade   float64
	Feedback     string
	GradedBy     string
	GradedAt     string
}
