package services

import (
	"context"
	"errors"
	"time"

	"github.com/student-records/apiserver/internal/metrics"
	"github.com/student-records/apiserver/internal/store"
	"github.com/student-records/apiserver/types"
	"go.uber.org/zap"
)

// EventPublisher delivers student change events.
type EventPublisher interface {
	PublishStudentEvent(ctx context.Context, event types.StudentEvent) error
}

// StudentService encapsulates student use-cases.
type StudentService struct {
	students store.Collection[types.Student]
	events   EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

// NewStudentService constructs a StudentService. events may be nil.
func NewStudentService(students store.Collection[types.Student], events EventPublisher, log *zap.Logger) *StudentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StudentService{students: students, events: events, log: log, now: time.Now}
}

func (s *StudentService) Create(ctx context.Context, input types.StudentInput) (types.Student, error) {
	now := s.timestamp()
	student := types.Student{
		Name:        input.Name,
		Email:       input.Email,
		Grade:       input.Grade,
		Age:         input.Age,
		Address:     input.Address,
		Description: input.Description,
		Role:        input.Role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.students.InsertOne(ctx, student)
	if err != nil {
		return types.Student{}, duplicateError(err)
	}
	student.ID = id

	s.publish(ctx, types.StudentCreated, id, &student)
	return student, nil
}

// Get returns false for malformed identifiers and absent records.
func (s *StudentService) Get(ctx context.Context, id string) (types.Student, bool, error) {
	if !store.ValidID(id) {
		return types.Student{}, false, nil
	}
	student, err := s.students.FindOne(ctx, store.ByID(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Student{}, false, nil
		}
		return types.Student{}, false, err
	}
	return student, true, nil
}

func (s *StudentService) List(ctx context.Context) ([]types.Student, error) {
	return store.Collect(s.students.FindMany(ctx, store.Filter{}))
}

// Update applies the fields present in update and refreshes updated_at.
// An empty update returns the record unchanged without writing.
func (s *StudentService) Update(ctx context.Context, id string, update types.StudentUpdate) (types.Student, bool, error) {
	current, ok, err := s.Get(ctx, id)
	if err != nil || !ok {
		return types.Student{}, ok, err
	}
	if update.Empty() {
		return current, true, nil
	}

	var set store.Fields
	if v, ok := update.Name.Get(); ok {
		set = set.Set("name", v)
	}
	if v, ok := update.Email.Get(); ok {
		set = set.Set("email", v)
	}
	if v, ok := update.Grade.Get(); ok {
		set = set.Set("grade", v)
	}
	if v, ok := update.Age.Get(); ok {
		set = set.Set("age", v)
	}
	if v, ok := update.Address.Get(); ok {
		set = set.Set("address", v)
	}
	if v, ok := update.Description.Get(); ok {
		set = set.Set("description", v)
	}
	if v, ok := update.Role.Get(); ok {
		set = set.Set("role", string(v))
	}

	updatedAt := s.timestamp()
	if !updatedAt.After(current.UpdatedAt) {
		updatedAt = current.UpdatedAt.Add(time.Millisecond)
	}
	set = set.Set("updated_at", updatedAt)

	matched, err := s.students.UpdateOne(ctx, store.ByID(id), set)
	if err != nil {
		return types.Student{}, false, duplicateError(err)
	}
	if !matched {
		return types.Student{}, false, nil
	}

	updated, ok, err := s.Get(ctx, id)
	if err != nil || !ok {
		return types.Student{}, ok, err
	}
	s.publish(ctx, types.StudentUpdated, id, &updated)
	return updated, true, nil
}

// Delete returns false for malformed identifiers and absent records.
func (s *StudentService) Delete(ctx context.Context, id string) (bool, error) {
	if !store.ValidID(id) {
		return false, nil
	}
	deleted, err := s.students.DeleteOne(ctx, store.ByID(id))
	if err != nil || !deleted {
		return false, err
	}
	s.publish(ctx, types.StudentDeleted, id, nil)
	return true, nil
}

func (s *StudentService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// publish runs after the store write committed, so a failure is logged
// and counted but never reported to the caller.
func (s *StudentService) publish(ctx context.Context, kind types.StudentEventType, id string, student *types.Student) {
	if s.events == nil {
		return
	}
	event := types.StudentEvent{
		Type:       kind,
		StudentID:  id,
		Student:    student,
		OccurredAt: s.timestamp(),
	}
	if err := s.events.PublishStudentEvent(ctx, event); err != nil {
		metrics.EventPublishFailures.WithLabelValues(string(kind)).Inc()
		s.log.Warn("publish student event failed",
			zap.String("type", string(kind)),
			zap.String("student_id", id),
			zap.Error(err),
		)
	}
}
