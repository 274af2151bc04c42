package group

import "github.com/trezcool/aula/core"

type Group struct {
	ID         string   `json:"_id"`
	CategoryID string   `json:"categoryId"`
	Name       string   `json:"name"`
	StudentIDs []string `json:"studentIds"`
	CourseID   string   `json:"courseId,omitempty"`
}

func (g Group) HasStudent(studentID string) bool {
	return core.ContainsString(g.StudentIDs, studentID)
}

type NewGroup struct {
	CategoryID string   `json:"categoryId" validate:"notblank"`
	Name       string   `json:"name" validate:"notblank"`
	StudentIDs []string `json:"studentIds"`
	CourseID   string   `json:"courseId,omitempty"`
}

// UpdateGroup carries a partial update; nil fields are left untouched.
type UpdateGroup struct {
	ID         string   `json:"_id" validate:"notblank"`
	Name       *string  `json:"name,omitempty" validate:"omitempty,notblank"`
	StudentIDs []string `json:"studentIds,omitempty"`
	CourseID   *string  `json:"courseId,omitempty"`
}
