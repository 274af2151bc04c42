package course

import "github.com/trezcool/aula/core"

type Course struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TeacherID   string   `json:"teacherId"`
	StudentIDs  []string `json:"studentIds"`
	CategoryIDs []string `json:"categoryIds,omitempty"`
}

// HasStudent reports whether studentID is enrolled.
func (c Course) HasStudent(studentID string) bool {
	return core.ContainsString(c.StudentIDs, studentID)
}

type NewCourse struct {
	Name        string   `json:"name" validate:"notblank"`
	Description string   `json:"description"`
	TeacherID   string   `json:"teacherId" validate:"notblank"`
	StudentIDs  []string `json:"studentIds"`
}

// Partition splits every course visible to one user.
type Partition struct {
	Available []Course
	Created   []Course
	Enrolled  []Course
}
