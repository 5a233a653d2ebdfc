package service

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"tphub/internal/model"
	"tphub/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
	nextID   int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.StudentID == "" {
		m.nextID++
		student.StudentID = fmt.Sprintf("stu-%03d", m.nextID)
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) List(_ context.Context) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.students, id)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses     map[string]*model.Course
	enrollments map[string][]string // courseID → studentIDs
	studentRepo *mockStudentRepo
}

func newMockCourseRepo(studentRepo *mockStudentRepo) *mockCourseRepo {
	return &mockCourseRepo{
		courses:     make(map[string]*model.Course),
		enrollments: make(map[string][]string),
		studentRepo: studentRepo,
	}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		course.CourseID = "course-" + course.Code
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByCode(_ context.Context, code string) (*model.Course, error) {
	for _, c := range m.courses {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) Enroll(_ context.Context, courseID string, studentIDs []string) error {
	existing := make(map[string]bool)
	for _, sid := range m.enrollments[courseID] {
		existing[sid] = true
	}
	for _, sid := range studentIDs {
		if !existing[sid] {
			m.enrollments[courseID] = append(m.enrollments[courseID], sid)
			existing[sid] = true
		}
	}
	return nil
}

func (m *mockCourseRepo) ListStudents(_ context.Context, courseID string) ([]model.Student, error) {
	var result []model.Student
	for _, sid := range m.enrollments[courseID] {
		if s, ok := m.studentRepo.students[sid]; ok {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	byAssignment map[string]*model.Submission
	nextID       int
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{byAssignment: make(map[string]*model.Submission)}
}

func (m *mockSubmissionRepo) Create(_ context.Context, submission *model.Submission) error {
	if submission.SubmissionID == "" {
		m.nextID++
		submission.SubmissionID = fmt.Sprintf("sub-%03d", m.nextID)
	}
	m.byAssignment[submission.AssignmentID] = submission
	return nil
}

func (m *mockSubmissionRepo) GetByAssignment(_ context.Context, assignmentID string) (*model.Submission, error) {
	if s, ok := m.byAssignment[assignmentID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) Update(_ context.Context, submission *model.Submission) error {
	m.byAssignment[submission.AssignmentID] = submission
	return nil
}

func (m *mockSubmissionRepo) DeleteByAssignment(_ context.Context, assignmentID string) error {
	delete(m.byAssignment, assignmentID)
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments    map[string]*model.Assignment
	courseRepo     *mockCourseRepo
	submissionRepo *mockSubmissionRepo
}

func newMockAssignmentRepo(courseRepo *mockCourseRepo, submissionRepo *mockSubmissionRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{
		assignments:    make(map[string]*model.Assignment),
		courseRepo:     courseRepo,
		submissionRepo: submissionRepo,
	}
}

func (m *mockAssignmentRepo) Create(_ context.Context, assignment *model.Assignment) error {
	if assignment.AssignmentID == "" {
		assignment.AssignmentID = fmt.Sprintf("tp-%s-%d", assignment.CourseID, assignment.Seq)
	}
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

// GetByID 模拟 Preload("Course") 与 Preload("Submission")
func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	if c, ok := m.courseRepo.courses[a.CourseID]; ok {
		cp.Course = c
	}
	if s, ok := m.submissionRepo.byAssignment[id]; ok {
		cp.Submission = s
	}
	return &cp, nil
}

func (m *mockAssignmentRepo) ListByCourse(_ context.Context, courseID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.CourseID == courseID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, assignment *model.Assignment) error {
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.assignments, id)
	return nil
}

// ── Mock StudentStatusRepository ──

type mockStudentStatusRepo struct {
	statuses    map[string]*model.StudentStatus // "studentID:assignmentID" → status
	studentRepo *mockStudentRepo
	nextID      int
}

func newMockStudentStatusRepo(studentRepo *mockStudentRepo) *mockStudentStatusRepo {
	return &mockStudentStatusRepo{
		statuses:    make(map[string]*model.StudentStatus),
		studentRepo: studentRepo,
	}
}

func statusKey(studentID, assignmentID string) string {
	return studentID + ":" + assignmentID
}

func (m *mockStudentStatusRepo) Create(_ context.Context, status *model.StudentStatus) error {
	if status.StatusID == "" {
		m.nextID++
		status.StatusID = fmt.Sprintf("status-%03d", m.nextID)
	}
	m.statuses[statusKey(status.StudentID, status.AssignmentID)] = status
	return nil
}

func (m *mockStudentStatusRepo) GetByStudentAndAssignment(_ context.Context, studentID, assignmentID string) (*model.StudentStatus, error) {
	if s, ok := m.statuses[statusKey(studentID, assignmentID)]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ListByAssignment 模拟 Preload("Student")
func (m *mockStudentStatusRepo) ListByAssignment(_ context.Context, assignmentID string) ([]model.StudentStatus, error) {
	var result []model.StudentStatus
	for _, s := range m.statuses {
		if s.AssignmentID != assignmentID {
			continue
		}
		cp := *s
		if stu, ok := m.studentRepo.students[s.StudentID]; ok {
			cp.Student = stu
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StatusID < result[j].StatusID })
	return result, nil
}

func (m *mockStudentStatusRepo) Update(_ context.Context, status *model.StudentStatus) error {
	m.statuses[statusKey(status.StudentID, status.AssignmentID)] = status
	return nil
}

// ── 测试用 Repository 聚合 ──

type testMocks struct {
	users       *mockUserRepo
	students    *mockStudentRepo
	courses     *mockCourseRepo
	assignments *mockAssignmentRepo
	submissions *mockSubmissionRepo
	statuses    *mockStudentStatusRepo
}

func newMockRepository() (*repository.Repository, *testMocks) {
	users := newMockUserRepo()
	students := newMockStudentRepo()
	courses := newMockCourseRepo(students)
	submissions := newMockSubmissionRepo()
	assignments := newMockAssignmentRepo(courses, submissions)
	statuses := newMockStudentStatusRepo(students)

	repo := &repository.Repository{
		User:          users,
		Course:        courses,
		Student:       students,
		Assignment:    assignments,
		Submission:    submissions,
		StudentStatus: statuses,
	}
	mocks := &testMocks{
		users:       users,
		students:    students,
		courses:     courses,
		assignments: assignments,
		submissions: submissions,
		statuses:    statuses,
	}
	return repo, mocks
}
