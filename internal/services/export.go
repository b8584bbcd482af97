package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/student-records/apiserver/internal/export"
	"github.com/student-records/apiserver/internal/metrics"
)

// ObjectStore uploads objects to a bucket.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// ExportService renders all students to a workbook and uploads it.
type ExportService struct {
	students *StudentService
	objects  ObjectStore
	now      func() time.Time
}

// NewExportService constructs an ExportService. objects may be nil, in
// which case every export fails with ErrExportUnavailable.
func NewExportService(students *StudentService, objects ObjectStore) *ExportService {
	return &ExportService{students: students, objects: objects, now: time.Now}
}

// Export uploads a workbook of every student and returns its object key.
func (s *ExportService) Export(ctx context.Context) (string, error) {
	if s.objects == nil {
		return "", ErrExportUnavailable
	}

	students, err := s.students.List(ctx)
	if err != nil {
		return "", err
	}
	buf, err := export.Render(students)
	if err != nil {
		return "", err
	}

	key := export.ObjectKey(s.now())
	if err := s.objects.Put(ctx, key, buf, int64(buf.Len()), export.ContentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	metrics.StudentExports.Inc()
	return key, nil
}
