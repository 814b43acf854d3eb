package model

import (
	"time"

	"github.com/google/uuid"
)

// UnitType classifies an organizational unit.
type UnitType string

const (
	UnitTypeSchool     UnitType = "SCHOOL"
	UnitTypeFaculty    UnitType = "FACULTY"
	UnitTypeInstitute  UnitType = "INSTITUTE"
	UnitTypeDepartment UnitType = "DEPARTMENT"
	UnitTypeOffice     UnitType = "OFFICE"
	UnitTypeDivision   UnitType = "DIVISION"
	UnitTypeBattalion  UnitType = "BATTALION"
	UnitTypeCompany    UnitType = "COMPANY"
	UnitTypeClass      UnitType = "CLASS"
)

// UnitCategory groups unit types into academic, administrative, and
// military branches of the hierarchy.
type UnitCategory string

const (
	UnitCategoryAcademic       UnitCategory = "ACADEMIC"
	UnitCategoryAdministrative UnitCategory = "ADMINISTRATIVE"
	UnitCategoryMilitary       UnitCategory = "MILITARY"
)

// Unit represents a node of the organizational hierarchy. Level is derived
// from the parent at creation time (root = 0).
type Unit struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Code        string       `json:"code"`
	Description string       `json:"description,omitempty"`
	Type        UnitType     `json:"type"`
	Category    UnitCategory `json:"category,omitempty"`
	ParentID    *uuid.UUID   `json:"parent_id,omitempty"`
	Level       int          `json:"level"`
	Order       int          `json:"order"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// UnitNode is a Unit with its resolved children, as returned by the tree
// endpoint.
type UnitNode struct {
	Unit
	Children []*UnitNode `json:"children"`
}

// CreateUnitRequest is the payload for creating a unit.
type CreateUnitRequest struct {
	Name        string       `json:"name" binding:"required,min=2,max=255"`
	Code        string       `json:"code" binding:"required,min=2,max=50"`
	Description string       `json:"description" binding:"omitempty,max=2000"`
	Type        UnitType     `json:"type" binding:"omitempty,oneof=SCHOOL FACULTY INSTITUTE DEPARTMENT OFFICE DIVISION BATTALION COMPANY CLASS"`
	Category    UnitCategory `json:"category" binding:"omitempty,oneof=ACADEMIC ADMINISTRATIVE MILITARY"`
	ParentID    *uuid.UUID   `json:"parent_id" binding:"omitempty"`
	Order       int          `json:"order" binding:"min=0"`
}

// UpdateUnitRequest is the payload for updating a unit.
type UpdateUnitRequest struct {
	Name        *string       `json:"name" binding:"omitempty,min=2,max=255"`
	Code        *string       `json:"code" binding:"omitempty,min=2,max=50"`
	Description *string       `json:"description" binding:"omitempty,max=2000"`
	Type        *UnitType     `json:"type" binding:"omitempty,oneof=SCHOOL FACULTY INSTITUTE DEPARTMENT OFFICE DIVISION BATTALION COMPANY CLASS"`
	Category    *UnitCategory `json:"category" binding:"omitempty,oneof=ACADEMIC ADMINISTRATIVE MILITARY"`
	Order       *int          `json:"order" binding:"omitempty,min=0"`
	IsActive    *bool         `json:"is_active" binding:"omitempty"`
}
