package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/smartmlms/smartlms-backend/internal/repository"
)

// ErrUnitNotFound indicates no unit matched the given ID.
var ErrUnitNotFound = errors.New("unit not found")

// UnitService handles the organizational hierarchy.
type UnitService struct {
	unitRepo *repository.UnitRepository
}

// NewUnitService creates a new UnitService.
func NewUnitService(unitRepo *repository.UnitRepository) *UnitService {
	return &UnitService{unitRepo: unitRepo}
}

// Create inserts a unit. Level is derived from the parent: root units are
// level 0, children are parent level + 1.
func (s *UnitService) Create(ctx context.Context, req *model.CreateUnitRequest) (*model.Unit, error) {
	level := 0
	if req.ParentID != nil {
		parent, err := s.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		level = parent.Level + 1
	}

	unit := &model.Unit{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Type:        req.Type,
		Category:    req.Category,
		ParentID:    req.ParentID,
		Level:       level,
		Order:       req.Order,
	}
	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return nil, fmt.Errorf("create unit: %w", err)
	}
	return unit, nil
}

// GetByID retrieves a unit.
func (s *UnitService) GetByID(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	unit, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	return unit, nil
}

// List retrieves all units as a flat, display-ordered list.
func (s *UnitService) List(ctx context.Context) ([]model.Unit, error) {
	units, err := s.unitRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if units == nil {
		units = []model.Unit{}
	}
	return units, nil
}

// Tree returns the unit hierarchy as a forest of root nodes. Children keep
// the flat list's display order. Units whose parent is missing are
// promoted to roots rather than dropped.
func (s *UnitService) Tree(ctx context.Context) ([]*model.UnitNode, error) {
	units, err := s.unitRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(units), nil
}

// BuildTree assembles a parent/child forest from a flat unit list.
func BuildTree(units []model.Unit) []*model.UnitNode {
	nodes := make(map[uuid.UUID]*model.UnitNode, len(units))
	for i := range units {
		nodes[units[i].ID] = &model.UnitNode{Unit: units[i], Children: []*model.UnitNode{}}
	}

	roots := []*model.UnitNode{}
	for i := range units {
		node := nodes[units[i].ID]
		if units[i].ParentID != nil {
			if parent, ok := nodes[*units[i].ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// Update applies a partial update to a unit.
func (s *UnitService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateUnitRequest) (*model.Unit, error) {
	unit, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		unit.Name = *req.Name
	}
	if req.Code != nil {
		unit.Code = *req.Code
	}
	if req.Description != nil {
		unit.Description = *req.Description
	}
	if req.Type != nil {
		unit.Type = *req.Type
	}
	if req.Category != nil {
		unit.Category = *req.Category
	}
	if req.Order != nil {
		unit.Order = *req.Order
	}
	if req.IsActive != nil {
		unit.IsActive = *req.IsActive
	}

	if err := s.unitRepo.Update(ctx, unit); err != nil {
		return nil, fmt.Errorf("update unit: %w", err)
	}
	return unit, nil
}

// Delete removes a unit.
func (s *UnitService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.unitRepo.Delete(ctx, id)
}
