package rest

import (
	"context"
	"fmt"

	"github.com/mmcdole/lectern/internal/domain"
)

// ListCourses returns the signed-in teacher's courses. The session cookie
// decides whose courses come back; owner is only logged.
func (c *Client) ListCourses(ctx context.Context, owner domain.OwnerKey) ([]domain.Course, error) {
	var dtos []CourseDTO
	if err := c.getJSON(ctx, "/teacher/courses", &dtos); err != nil {
		return nil, err
	}
	c.logger.Debug("listed courses", "owner", owner, "count", len(dtos))
	return MapCourses(dtos), nil
}

func (c *Client) ListDivisions(ctx context.Context, courseID int64) ([]domain.Division, error) {
	var dtos []DivisionDTO
	path := fmt.Sprintf("/teacher/courses/%d/divisions", courseID)
	if err := c.getJSON(ctx, path, &dtos); err != nil {
		return nil, notFoundAs(err, domain.ErrCourseNotFound)
	}
	return MapDivisions(dtos), nil
}

func (c *Client) ListContents(ctx context.Context, divisionID int64) ([]domain.Content, error) {
	var dtos []ContentDTO
	path := fmt.Sprintf("/teacher/divisions/%d/contents", divisionID)
	if err := c.getJSON(ctx, path, &dtos); err != nil {
		return nil, notFoundAs(err, domain.ErrDivisionNotFound)
	}
	return MapContents(dtos), nil
}

// CreateCourse creates a course owned by the signed-in teacher
func (c *Client) CreateCourse(ctx context.Context, owner domain.OwnerKey, name string, price float64) (domain.Course, error) {
	var dto CourseDTO
	err := c.postJSON(ctx, "/teacher/courses", CreateCourseRequest{Name: name, Price: price}, &dto)
	if err != nil {
		return domain.Course{}, err
	}
	c.logger.Info("created course", "owner", owner, "courseID", dto.ID)
	return MapCourse(dto), nil
}

// CreateDivision adds a division to a course
func (c *Client) CreateDivision(ctx context.Context, courseID int64, title string, order int) (domain.Division, error) {
	var dto DivisionDTO
	path := fmt.Sprintf("/teacher/courses/%d/divisions", courseID)
	if err := c.postJSON(ctx, path, CreateDivisionRequest{Title: title, Order: order}, &dto); err != nil {
		return domain.Division{}, notFoundAs(err, domain.ErrCourseNotFound)
	}
	c.logger.Info("created division", "courseID", courseID, "divisionID", dto.ID)
	return MapDivision(dto), nil
}
