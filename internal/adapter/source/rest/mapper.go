package rest

import (
	"strings"

	"github.com/mmcdole/lectern/internal/domain"
)

// MapCourse converts a CourseDTO to a domain.Course
func MapCourse(dto CourseDTO) domain.Course {
	course := domain.Course{
		ID:    dto.ID,
		Name:  dto.Name,
		Price: dto.Price,
	}
	if dto.ThumbnailURL != nil {
		course.ThumbnailURL = *dto.ThumbnailURL
	}
	return course
}

// MapCourses converts course DTOs, keeping their order
func MapCourses(dtos []CourseDTO) []domain.Course {
	courses := make([]domain.Course, 0, len(dtos))
	for _, dto := range dtos {
		courses = append(courses, MapCourse(dto))
	}
	return courses
}

func MapDivision(dto DivisionDTO) domain.Division {
	return domain.Division{ID: dto.ID, Title: dto.Title, Order: dto.Order}
}

// MapDivisions converts division DTOs, keeping backend order
func MapDivisions(dtos []DivisionDTO) []domain.Division {
	divs := make([]domain.Division, 0, len(dtos))
	for _, dto := range dtos {
		divs = append(divs, MapDivision(dto))
	}
	return divs
}

// MapContents converts content DTOs, keeping backend order.
// Duration is only kept for videos.
func MapContents(dtos []ContentDTO) []domain.Content {
	contents := make([]domain.Content, 0, len(dtos))
	for _, dto := range dtos {
		content := domain.Content{
			ID:       dto.ID,
			Title:    dto.Title,
			Type:     domain.ContentType(strings.ToUpper(dto.Type)),
			Category: domain.ContentCategory(strings.ToUpper(dto.Category)),
			FileURL:  dto.FileURL,
		}
		if dto.Duration != nil && content.Type == domain.ContentTypeVideo {
			content.Duration = *dto.Duration
		}
		contents = append(contents, content)
	}
	return contents
}

func mapTeacher(dto TeacherDTO) *domain.AuthResult {
	return &domain.AuthResult{Email: dto.Email, Name: dto.Name}
}
