package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
	"github.com/noah-isme/timetable-admin-api/pkg/genai"
	"github.com/noah-isme/timetable-admin-api/pkg/jobs"
)

type mockEntityRepo struct {
	entities map[string]*models.EntityProfile
	created  []*models.EntityProfile
	deleted  []string
}

func newMockEntityRepo(entities ...*models.EntityProfile) *mockEntityRepo {
	repo := &mockEntityRepo{entities: make(map[string]*models.EntityProfile)}
	for _, e := range entities {
		repo.entities[e.ID] = e
	}
	return repo
}

func (m *mockEntityRepo) List(_ context.Context, filter models.EntityFilter) ([]models.EntityProfile, int, error) {
	var out []models.EntityProfile
	for _, e := range m.entities {
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (m *mockEntityRepo) FindByID(_ context.Context, id string) (*models.EntityProfile, error) {
	if e, ok := m.entities[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEntityRepo) FindByCodeOrName(_ context.Context, entityType models.EntityType, token string) (*models.EntityProfile, error) {
	for _, e := range m.entities {
		if e.Type != entityType {
			continue
		}
		if strings.EqualFold(e.ShortCode, token) || strings.EqualFold(e.Name, token) {
			copied := *e
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockEntityRepo) FindAnyByCodeOrName(_ context.Context, token string) (*models.EntityProfile, error) {
	for _, e := range m.entities {
		if strings.EqualFold(e.ShortCode, token) || strings.EqualFold(e.Name, token) {
			copied := *e
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockEntityRepo) ExistsByCode(_ context.Context, entityType models.EntityType, code, excludeID string) (bool, error) {
	for _, e := range m.entities {
		if e.Type == entityType && strings.EqualFold(e.ShortCode, code) && e.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEntityRepo) Create(_ context.Context, entity *models.EntityProfile) error {
	if entity.ID == "" {
		entity.ID = "generated-" + entity.ShortCode
	}
	m.entities[entity.ID] = entity
	m.created = append(m.created, entity)
	return nil
}

func (m *mockEntityRepo) Update(_ context.Context, entity *models.EntityProfile) error {
	m.entities[entity.ID] = entity
	return nil
}

func (m *mockEntityRepo) Delete(_ context.Context, id string) error {
	delete(m.entities, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockEntityRepo) CountByType(_ context.Context, entityType models.EntityType) (int, error) {
	count := 0
	for _, e := range m.entities {
		if e.Type == entityType {
			count++
		}
	}
	return count, nil
}

type mockScheduleRepo struct {
	cells map[string]models.ScheduleCell
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{cells: make(map[string]models.ScheduleCell)}
}

func cellKey(entityID, day string, period int) string {
	return fmt.Sprintf("%s|%s|%d", entityID, day, period)
}

func (m *mockScheduleRepo) ListByEntity(_ context.Context, entityID string) ([]models.ScheduleCell, error) {
	var out []models.ScheduleCell
	for _, c := range m.cells {
		if c.EntityID == entityID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockScheduleRepo) ListByDay(_ context.Context, day string) ([]models.ScheduleCell, error) {
	var out []models.ScheduleCell
	for _, c := range m.cells {
		if c.Day == day {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockScheduleRepo) UpsertCell(_ context.Context, cell *models.ScheduleCell) error {
	cell.UpdatedAt = time.Now().UTC()
	m.cells[cellKey(cell.EntityID, cell.Day, cell.Period)] = *cell
	return nil
}

func (m *mockScheduleRepo) DeleteCell(_ context.Context, entityID, day string, period int) error {
	delete(m.cells, cellKey(entityID, day, period))
	return nil
}

func (m *mockScheduleRepo) BulkUpsert(_ context.Context, cells []models.ScheduleCell) error {
	for _, c := range cells {
		m.cells[cellKey(c.EntityID, c.Day, c.Period)] = c
	}
	return nil
}

type mockSessionStore struct {
	session *models.ImportSession
	saves   int
}

func (m *mockSessionStore) Get(_ context.Context) (*models.ImportSession, error) {
	if m.session == nil {
		return nil, appErrors.ErrCacheMiss
	}
	copied := *m.session
	return &copied, nil
}

func (m *mockSessionStore) Save(_ context.Context, session *models.ImportSession) error {
	copied := *session
	m.session = &copied
	m.saves++
	return nil
}

func (m *mockSessionStore) Delete(_ context.Context) error {
	m.session = nil
	return nil
}

type mockExtractor struct {
	result  *models.AiImportResult
	dropped int
	err     error
	calls   int
}

func (m *mockExtractor) ExtractTimetable(_ context.Context, _ genai.ExtractionInput) (*models.AiImportResult, int, error) {
	m.calls++
	return m.result, m.dropped, m.err
}

type mockQueue struct {
	jobs []jobs.Job
}

func (m *mockQueue) Enqueue(job jobs.Job) error {
	m.jobs = append(m.jobs, job)
	return nil
}

type mockSettingsRepo struct {
	rows map[string]*models.Setting
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{rows: make(map[string]*models.Setting)}
}

func (m *mockSettingsRepo) ListAll(_ context.Context) ([]models.Setting, error) {
	var out []models.Setting
	for _, row := range m.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (m *mockSettingsRepo) Get(_ context.Context, key string) (*models.Setting, error) {
	if row, ok := m.rows[key]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSettingsRepo) Upsert(_ context.Context, setting *models.Setting) error {
	copied := *setting
	m.rows[setting.Key] = &copied
	return nil
}

type mockStudentRepo struct {
	students map[string]*models.Student
	bulk     [][]models.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*models.Student)}
}

func (m *mockStudentRepo) List(_ context.Context, _ models.StudentFilter) ([]models.StudentDetail, int, error) {
	var out []models.StudentDetail
	for _, s := range m.students {
		out = append(out, models.StudentDetail{Student: *s})
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(_ context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "s-" + student.RollNumber
	}
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) BulkCreate(_ context.Context, students []models.Student) error {
	m.bulk = append(m.bulk, students)
	for i := range students {
		if students[i].ID == "" {
			students[i].ID = "s-" + students[i].RollNumber
		}
		copied := students[i]
		m.students[copied.ID] = &copied
	}
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	delete(m.students, id)
	return nil
}

func (m *mockStudentRepo) Count(_ context.Context) (int, error) {
	return len(m.students), nil
}

type mockAttendanceRepo struct {
	records   map[string]models.AttendanceRecord
	summaries []models.AttendanceSummary
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]models.AttendanceRecord)}
}

func (m *mockAttendanceRepo) UpsertBatch(_ context.Context, records []models.AttendanceRecord) error {
	for _, r := range records {
		key := fmt.Sprintf("%s|%s|%s|%d", r.ClassID, r.StudentID, r.Date.Format("2006-01-02"), r.Period)
		m.records[key] = r
	}
	return nil
}

func (m *mockAttendanceRepo) ListByPeriod(_ context.Context, classID string, date time.Time, period int) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, r := range m.records {
		if r.ClassID == classID && r.Date.Equal(date) && r.Period == period {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) Summarize(_ context.Context, _ string, _, _ time.Time) ([]models.AttendanceSummary, error) {
	return m.summaries, nil
}

type mockGenerator struct {
	answer string
	err    error
	prompt string
}

func (m *mockGenerator) GenerateText(_ context.Context, _, prompt string, _ int) (string, error) {
	m.prompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}
