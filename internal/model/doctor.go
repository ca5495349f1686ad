package model

import (
	"github.com/google/uuid"
)

type Department struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}

type Doctor struct {
	Base
	Email          string     `db:"email" json:"email"`
	FullName       string     `db:"full_name" json:"full_name"`
	Specialization string     `db:"specialization" json:"specialization"`
	DepartmentID   *uuid.UUID `db:"department_id" json:"department_id,omitempty"`
	Phone          string     `db:"phone" json:"phone,omitempty"`
}
