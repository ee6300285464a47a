package authoring

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/lectern/internal/catalog"
	"github.com/mmcdole/lectern/internal/domain"
)

// Service creates catalog entries on the backend and keeps the cache in step.
type Service struct {
	repo   domain.AuthoringRepository
	cache  *catalog.Cache
	logger *slog.Logger
}

// NewService creates a new authoring service.
func NewService(repo domain.AuthoringRepository, cache *catalog.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// CreateCourse creates a course and writes it straight into the cache.
func (s *Service) CreateCourse(ctx context.Context, owner domain.OwnerKey, name string, price float64) (domain.Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Course{}, fmt.Errorf("course name is required")
	}
	if price < 0 {
		return domain.Course{}, fmt.Errorf("price must not be negative")
	}

	course, err := s.repo.CreateCourse(ctx, owner, name, price)
	if err != nil {
		s.logger.Error("failed to create course", "error", err, "name", name)
		return domain.Course{}, err
	}
	s.cache.UpsertCourse(owner, course)
	s.logger.Info("created course", "owner", owner, "courseID", course.ID)
	return course, nil
}

// CreateDivision adds a division to a course. The course's cached divisions
// are dropped so the next read fetches the list with the new entry.
func (s *Service) CreateDivision(ctx context.Context, owner domain.OwnerKey, courseID int64, title string, order int) (domain.Division, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Division{}, fmt.Errorf("division title is required")
	}

	div, err := s.repo.CreateDivision(ctx, courseID, title, order)
	if err != nil {
		s.logger.Error("failed to create division", "error", err, "courseID", courseID)
		return domain.Division{}, err
	}
	s.cache.Invalidate(owner, catalog.ScopeDivisions(courseID))
	s.logger.Info("created division", "owner", owner, "courseID", courseID, "divisionID", div.ID)
	return div, nil
}
