package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

func TestEntityCreateDefaultsShortCode(t *testing.T) {
	repo := newMockEntityRepo()
	svc := NewEntityService(repo, nil, nil, nil)

	entity, err := svc.Create(context.Background(), CreateEntityRequest{Name: "Jane Doe", Type: models.EntityTypeTeacher})
	require.NoError(t, err)
	assert.Equal(t, "JAN", entity.ShortCode)
	assert.Equal(t, models.EntityTypeTeacher, entity.Type)
}

func TestEntityCreateUppercasesCode(t *testing.T) {
	repo := newMockEntityRepo()
	svc := NewEntityService(repo, nil, nil, nil)

	entity, err := svc.Create(context.Background(), CreateEntityRequest{Name: "Jane Doe", ShortCode: "jd", Type: models.EntityTypeTeacher})
	require.NoError(t, err)
	assert.Equal(t, "JD", entity.ShortCode)
}

func TestEntityCreateRejectsDuplicateCode(t *testing.T) {
	jane := &models.EntityProfile{ID: "t1", Name: "Jane Doe", ShortCode: "JD", Type: models.EntityTypeTeacher}
	svc := NewEntityService(newMockEntityRepo(jane), nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateEntityRequest{Name: "John Drake", ShortCode: "jd", Type: models.EntityTypeTeacher})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// The same code on the other profile type is fine.
	_, err = svc.Create(context.Background(), CreateEntityRequest{Name: "Junior D", ShortCode: "jd", Type: models.EntityTypeClass})
	require.NoError(t, err)
}

func TestEntityCreateRejectsBadType(t *testing.T) {
	svc := NewEntityService(newMockEntityRepo(), nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateEntityRequest{Name: "X", Type: "ROOM"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEntityUpdateMergesFields(t *testing.T) {
	jane := &models.EntityProfile{ID: "t1", Name: "Jane Doe", ShortCode: "JD", Type: models.EntityTypeTeacher}
	repo := newMockEntityRepo(jane)
	svc := NewEntityService(repo, nil, nil, nil)

	name := "Jane Doe-Smith"
	updated, err := svc.Update(context.Background(), "t1", UpdateEntityRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe-Smith", updated.Name)
	assert.Equal(t, "JD", updated.ShortCode)
}

func TestEntityDeleteUnknown(t *testing.T) {
	svc := NewEntityService(newMockEntityRepo(), nil, nil, nil)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
