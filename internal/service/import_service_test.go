package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

func newImportFixture(extractor *mockExtractor, entities ...*models.EntityProfile) (*ImportService, *mockSessionStore, *mockScheduleRepo, *mockQueue) {
	sessions := &mockSessionStore{}
	schedule := newMockScheduleRepo()
	queue := &mockQueue{}
	svc := NewImportService(
		sessions,
		newMockEntityRepo(entities...),
		schedule,
		extractor,
		nil,
		nil,
		nil,
		config.ImportsConfig{Enabled: true},
		nil,
	)
	svc.SetQueue(queue)
	return svc, sessions, schedule, queue
}

func classWiseResult() *models.AiImportResult {
	return &models.AiImportResult{
		DetectedType: models.DetectedClassWise,
		Profiles: []models.ExtractedProfile{
			{
				Name: "10A",
				Schedule: map[string]map[string]models.ExtractedEntry{
					"Mon": {
						"1": {Subject: "MATH", Room: "S1", Code: "JD"},
						"2": {Subject: "BIO", Code: "XX"},
					},
				},
			},
		},
		UnknownCodes: []string{"IGNORED_BY_SERVICE"},
	}
}

func TestImportStartEnqueuesExtraction(t *testing.T) {
	extractor := &mockExtractor{result: classWiseResult()}
	svc, sessions, _, queue := newImportFixture(extractor)

	session, err := svc.StartText(context.Background(), "Mon P1 Math JD")
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusProcessing, session.Status)
	assert.NotEmpty(t, session.RequestID)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobTypeExtraction, queue.jobs[0].Type)
	require.NotNil(t, sessions.session)
	assert.Equal(t, session.ID, sessions.session.ID)
}

func TestImportStartRejectedWhileProcessing(t *testing.T) {
	extractor := &mockExtractor{result: classWiseResult()}
	svc, _, _, _ := newImportFixture(extractor)

	_, err := svc.StartText(context.Background(), "first")
	require.NoError(t, err)

	_, err = svc.StartText(context.Background(), "second")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrImportState.Code, appErrors.FromError(err).Code)
}

func TestImportExtractionMovesSessionToReview(t *testing.T) {
	jane := &models.EntityProfile{ID: "t1", Name: "Jane Doe", ShortCode: "JD", Type: models.EntityTypeTeacher}
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	extractor := &mockExtractor{result: classWiseResult(), dropped: 2}
	svc, sessions, _, queue := newImportFixture(extractor, jane, tenA)

	_, err := svc.StartText(context.Background(), "text")
	require.NoError(t, err)
	require.NoError(t, svc.HandleExtraction(context.Background(), queue.jobs[0]))

	session := sessions.session
	require.NotNil(t, session)
	assert.Equal(t, models.ImportStatusReview, session.Status)
	assert.Equal(t, 2, session.DroppedSlots)
	assert.Empty(t, session.UnresolvedOwners)
	// Unknown codes come from the entries, not the model's own list: JD
	// resolves to Jane Doe, XX resolves to nothing.
	assert.Equal(t, []string{"XX"}, session.Result.UnknownCodes)
	assert.Equal(t, 1, extractor.calls)
}

func TestImportExtractionFailureBecomesErrorState(t *testing.T) {
	extractor := &mockExtractor{err: appErrors.New("AI_UNAVAILABLE", 502, "Quota exceeded for today")}
	svc, sessions, _, queue := newImportFixture(extractor)

	_, err := svc.StartText(context.Background(), "text")
	require.NoError(t, err)

	// The handler reports success to the queue so nothing retries; the
	// failure lives in the session instead.
	require.NoError(t, svc.HandleExtraction(context.Background(), queue.jobs[0]))

	session := sessions.session
	require.NotNil(t, session)
	assert.Equal(t, models.ImportStatusError, session.Status)
	assert.Equal(t, "Quota exceeded for today", session.ErrorMessage)
	assert.Equal(t, 1, extractor.calls)
}

func TestImportStaleResultDiscarded(t *testing.T) {
	extractor := &mockExtractor{result: classWiseResult()}
	svc, sessions, schedule, queue := newImportFixture(extractor)

	_, err := svc.StartText(context.Background(), "text")
	require.NoError(t, err)
	staleJob := queue.jobs[0]

	// The administrator cancels and starts over before the first extraction
	// lands.
	require.NoError(t, svc.Cancel(context.Background()))
	fresh, err := svc.StartText(context.Background(), "newer text")
	require.NoError(t, err)

	require.NoError(t, svc.HandleExtraction(context.Background(), staleJob))

	session := sessions.session
	require.NotNil(t, session)
	assert.Equal(t, fresh.RequestID, session.RequestID)
	assert.Equal(t, models.ImportStatusProcessing, session.Status)
	assert.Nil(t, session.Result)
	assert.Empty(t, schedule.cells)
}

func TestImportFinalizeWritesMappedProfiles(t *testing.T) {
	jane := &models.EntityProfile{ID: "t1", Name: "Jane Doe", ShortCode: "JD", Type: models.EntityTypeTeacher}
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	extractor := &mockExtractor{result: classWiseResult()}
	svc, _, schedule, queue := newImportFixture(extractor, jane, tenA)

	_, err := svc.StartText(context.Background(), "text")
	require.NoError(t, err)
	require.NoError(t, svc.HandleExtraction(context.Background(), queue.jobs[0]))

	// An imported cell overwrites whatever occupied its slot.
	require.NoError(t, schedule.BulkUpsert(context.Background(), []models.ScheduleCell{
		{EntityID: "c1", Day: "Mon", Period: 1, Subject: "OLD"},
		{EntityID: "c1", Day: "Tue", Period: 3, Subject: "KEPT"},
	}))

	summary, err := svc.Finalize(context.Background(), FinalizeImportRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ProfilesMerged)
	assert.Equal(t, 0, summary.ProfilesDropped)
	assert.Equal(t, 2, summary.CellsWritten)

	mon1 := schedule.cells[cellKey("c1", "Mon", 1)]
	assert.Equal(t, "MATH", mon1.Subject)
	assert.Equal(t, "JD", mon1.CounterpartCode)
	mon2 := schedule.cells[cellKey("c1", "Mon", 2)]
	// Unresolvable codes are stored verbatim, never blanked.
	assert.Equal(t, "XX", mon2.CounterpartCode)
	assert.Equal(t, "KEPT", schedule.cells[cellKey("c1", "Tue", 3)].Subject)

	// Finalize settles the flow back to idle.
	session, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestImportFinalizeAppliesCodeMappings(t *testing.T) {
	jane := &models.EntityProfile{ID: "t1", Name: "Jane Doe", ShortCode: "JD", Type: models.EntityTypeTeacher}
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	extractor := &mockExtractor{result: classWiseResult()}
	svc, _, schedule, queue := newImportFixture(extractor, jane, tenA)

	_, err := svc.StartText(context.Background(), "text")
	require.NoError(t, err)
	require.NoError(t, svc.HandleExtraction(context.Background(), queue.jobs[0]))

	// Review flagged "XX"; the administrator assigns it a display name.
	summary, err := svc.Finalize(context.Background(), FinalizeImportRequest{
		Mappings: map[string]string{"XX": "Jane Doe"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.CellsWritten)
	assert.Equal(t, "Jane Doe", schedule.cells[cellKey("c1", "Mon", 2)].CounterpartCode)
	// Codes the administrator left alone stay verbatim.
	assert.Equal(t, "JD", schedule.cells[cellKey("c1", "Mon", 1)].CounterpartCode)
}

func TestImportExtractionRecognizesCodesOfAnyType(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	tenB := &models.EntityProfile{ID: "c2", Name: "Class Ten B", ShortCode: "10B", Type: models.EntityTypeClass}
	extractor := &mockExtractor{result: &models.AiImportResult{
		DetectedType: models.DetectedClassWise,
		Profiles: []models.ExtractedProfile{
			{
				Name: "10A",
				Schedule: map[string]map[string]models.ExtractedEntry{
					"Mon": {
						"1": {Subject: "MATH", Code: "10B"},
						"2": {Subject: "BIO", Code: "XX"},
					},
				},
			},
		},
	}}
	svc, sessions, _, queue := newImportFixture(extractor, tenA, tenB)

	_, err := svc.StartText(context.Background(), "text")
	require.NoError(t, err)
	require.NoError(t, svc.HandleExtraction(context.Background(), queue.jobs[0]))

	// "10B" matches a registered class even though a class-wise import
	// normally pairs with teachers; only "XX" is truly unknown.
	assert.Equal(t, []string{"XX"}, sessions.session.Result.UnknownCodes)
}

func TestImportFinalizeUsesExplicitMappings(t *testing.T) {
	tenA := &models.EntityProfile{ID: "c1", Name: "Class Ten A", ShortCode: "CTA", Type: models.EntityTypeClass}
	extractor := &mockExtractor{result: classWiseResult()}
	svc, sessions, schedule, queue := newImportFixture(extractor, tenA)

	_, err := svc.StartText(context.Background(), "text")
	require.NoError(t, err)
	require.NoError(t, svc.HandleExtraction(context.Background(), queue.jobs[0]))

	// "10A" resolves to nothing on its own, so review flags it.
	assert.Equal(t, []string{"10A"}, sessions.session.UnresolvedOwners)

	summary, err := svc.Finalize(context.Background(), FinalizeImportRequest{
		Mappings: map[string]string{"10A": "c1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ProfilesMerged)
	assert.Equal(t, "MATH", schedule.cells[cellKey("c1", "Mon", 1)].Subject)
}

func TestImportFinalizeDropsUnmappedProfiles(t *testing.T) {
	extractor := &mockExtractor{result: classWiseResult()}
	svc, _, schedule, queue := newImportFixture(extractor)

	_, err := svc.StartText(context.Background(), "text")
	require.NoError(t, err)
	require.NoError(t, svc.HandleExtraction(context.Background(), queue.jobs[0]))

	summary, err := svc.Finalize(context.Background(), FinalizeImportRequest{
		Mappings: map[string]string{"10A": ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ProfilesMerged)
	assert.Equal(t, 1, summary.ProfilesDropped)
	assert.Equal(t, 0, summary.CellsWritten)
	assert.Empty(t, schedule.cells)
}

func TestImportFinalizeRejectsWrongTypeMapping(t *testing.T) {
	jane := &models.EntityProfile{ID: "t1", Name: "Jane Doe", ShortCode: "JD", Type: models.EntityTypeTeacher}
	extractor := &mockExtractor{result: classWiseResult()}
	svc, _, _, queue := newImportFixture(extractor, jane)

	_, err := svc.StartText(context.Background(), "text")
	require.NoError(t, err)
	require.NoError(t, svc.HandleExtraction(context.Background(), queue.jobs[0]))

	_, err = svc.Finalize(context.Background(), FinalizeImportRequest{
		Mappings: map[string]string{"10A": "t1"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestImportFinalizeRequiresReviewState(t *testing.T) {
	extractor := &mockExtractor{result: classWiseResult()}
	svc, _, _, _ := newImportFixture(extractor)

	_, err := svc.Finalize(context.Background(), FinalizeImportRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrImportState.Code, appErrors.FromError(err).Code)

	_, err = svc.StartText(context.Background(), "text")
	require.NoError(t, err)

	// Still PROCESSING until the handler runs.
	_, err = svc.Finalize(context.Background(), FinalizeImportRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrImportState.Code, appErrors.FromError(err).Code)
}

func TestImportCancelLeavesScheduleUntouched(t *testing.T) {
	jane := &models.EntityProfile{ID: "t1", Name: "Jane Doe", ShortCode: "JD", Type: models.EntityTypeTeacher}
	tenA := &models.EntityProfile{ID: "c1", Name: "10A", ShortCode: "10A", Type: models.EntityTypeClass}
	extractor := &mockExtractor{result: classWiseResult()}
	svc, sessions, schedule, queue := newImportFixture(extractor, jane, tenA)

	_, err := svc.StartText(context.Background(), "text")
	require.NoError(t, err)
	require.NoError(t, svc.HandleExtraction(context.Background(), queue.jobs[0]))

	require.NoError(t, svc.Cancel(context.Background()))
	assert.Nil(t, sessions.session)
	assert.Empty(t, schedule.cells)

	err = svc.Cancel(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrImportState.Code, appErrors.FromError(err).Code)
}

func TestImportGetIdleReturnsNil(t *testing.T) {
	extractor := &mockExtractor{}
	svc, _, _, _ := newImportFixture(extractor)

	session, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}
