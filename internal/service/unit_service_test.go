package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTree(t *testing.T) {
	academyID := uuid.New()
	facultyID := uuid.New()
	deptID := uuid.New()
	battalionID := uuid.New()

	units := []model.Unit{
		{ID: academyID, Name: "Academy", Level: 0},
		{ID: facultyID, Name: "Faculty of Engineering", ParentID: &academyID, Level: 1},
		{ID: deptID, Name: "Dept. of Tactics", ParentID: &facultyID, Level: 2},
		{ID: battalionID, Name: "1st Battalion", ParentID: &academyID, Level: 1},
	}

	roots := BuildTree(units)
	require.Len(t, roots, 1)
	assert.Equal(t, "Academy", roots[0].Name)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "Faculty of Engineering", roots[0].Children[0].Name)
	assert.Equal(t, "1st Battalion", roots[0].Children[1].Name)
	require.Len(t, roots[0].Children[0].Children, 1)
	assert.Equal(t, "Dept. of Tactics", roots[0].Children[0].Children[0].Name)
}

func TestBuildTreeOrphanPromotedToRoot(t *testing.T) {
	missingParent := uuid.New()
	units := []model.Unit{
		{ID: uuid.New(), Name: "Orphan Company", ParentID: &missingParent},
	}

	roots := BuildTree(units)
	require.Len(t, roots, 1)
	assert.Equal(t, "Orphan Company", roots[0].Name)
}

func TestBuildTreeEmpty(t *testing.T) {
	assert.Empty(t, BuildTree(nil))
}

func TestBuildTreePreservesInputOrder(t *testing.T) {
	rootID := uuid.New()
	units := []model.Unit{
		{ID: rootID, Name: "Root"},
		{ID: uuid.New(), Name: "Alpha", ParentID: &rootID},
		{ID: uuid.New(), Name: "Bravo", ParentID: &rootID},
		{ID: uuid.New(), Name: "Charlie", ParentID: &rootID},
	}

	roots := BuildTree(units)
	require.Len(t, roots, 1)
	names := make([]string, 0, 3)
	for _, child := range roots[0].Children {
		names = append(names, child.Name)
	}
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, names)
}
