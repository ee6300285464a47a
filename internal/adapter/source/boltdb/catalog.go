package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/lectern/internal/domain"
)

// Bucket names
var (
	bucketCourses   = []byte("courses")   // owner -> []Course
	bucketDivisions = []byte("divisions") // courseID -> []Division
	bucketContents  = []byte("contents")  // divisionID -> []Content
)

// Catalog is an offline course backend stored in a single bbolt file.
// Implements domain.CourseRepository and domain.AuthoringRepository.
//
// Every course has a divisions key and every division a contents key, even
// when empty, so a missing key means the parent does not exist.
type Catalog struct {
	db     *bolt.DB
	logger *slog.Logger
}

// Open opens (or creates) the catalog file at path.
func Open(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCourses, bucketDivisions, bucketContents} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{db: db, logger: logger}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// === Generic helpers ===

func idKey(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func ownerKey(owner domain.OwnerKey) []byte {
	return []byte(owner.Normalize())
}

// getList decodes the list stored at key. ok is false when the key is absent.
func getList[T any](b *bolt.Bucket, key []byte) ([]T, bool, error) {
	data := b.Get(key)
	if data == nil {
		return nil, false, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, true, fmt.Errorf("corrupt record %x: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, true, nil
}

func putList[T any](b *bolt.Bucket, key []byte, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

// bumpSequence keeps the bucket sequence ahead of imported IDs
func bumpSequence(b *bolt.Bucket, id int64) error {
	if id > 0 && uint64(id) > b.Sequence() {
		return b.SetSequence(uint64(id))
	}
	return nil
}

// === domain.CourseRepository ===

// ListCourses returns the owner's courses; an unknown owner has none.
func (c *Catalog) ListCourses(ctx context.Context, owner domain.OwnerKey) ([]domain.Course, error) {
	var courses []domain.Course
	err := c.db.View(func(tx *bolt.Tx) error {
		var err error
		courses, _, err = getList[domain.Course](tx.Bucket(bucketCourses), ownerKey(owner))
		return err
	})
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []domain.Course{}
	}
	return courses, nil
}

func (c *Catalog) ListDivisions(ctx context.Context, courseID int64) ([]domain.Division, error) {
	var divs []domain.Division
	var ok bool
	err := c.db.View(func(tx *bolt.Tx) error {
		var err error
		divs, ok, err = getList[domain.Division](tx.Bucket(bucketDivisions), idKey(courseID))
		return err
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrCourseNotFound, courseID)
	}
	return divs, nil
}

func (c *Catalog) ListContents(ctx context.Context, divisionID int64) ([]domain.Content, error) {
	var contents []domain.Content
	var ok bool
	err := c.db.View(func(tx *bolt.Tx) error {
		var err error
		contents, ok, err = getList[domain.Content](tx.Bucket(bucketContents), idKey(divisionID))
		return err
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrDivisionNotFound, divisionID)
	}
	return contents, nil
}

// === domain.AuthoringRepository ===

func (c *Catalog) CreateCourse(ctx context.Context, owner domain.OwnerKey, name string, price float64) (domain.Course, error) {
	var course domain.Course
	err := c.db.Update(func(tx *bolt.Tx) error {
		courses := tx.Bucket(bucketCourses)
		id, err := courses.NextSequence()
		if err != nil {
			return err
		}
		course = domain.Course{ID: int64(id), Name: name, Price: price}

		list, _, err := getList[domain.Course](courses, ownerKey(owner))
		if err != nil {
			return err
		}
		if err := putList(courses, ownerKey(owner), append(list, course)); err != nil {
			return err
		}
		return putList[domain.Division](tx.Bucket(bucketDivisions), idKey(course.ID), nil)
	})
	if err != nil {
		return domain.Course{}, err
	}
	c.logger.Info("created course", "owner", owner, "courseID", course.ID)
	return course, nil
}

func (c *Catalog) CreateDivision(ctx context.Context, courseID int64, title string, order int) (domain.Division, error) {
	var div domain.Division
	err := c.db.Update(func(tx *bolt.Tx) error {
		divisions := tx.Bucket(bucketDivisions)
		list, ok, err := getList[domain.Division](divisions, idKey(courseID))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d", domain.ErrCourseNotFound, courseID)
		}
		id, err := divisions.NextSequence()
		if err != nil {
			return err
		}
		div = domain.Division{ID: int64(id), Title: title, Order: order}
		if err := putList(divisions, idKey(courseID), append(list, div)); err != nil {
			return err
		}
		return putList[domain.Content](tx.Bucket(bucketContents), idKey(div.ID), nil)
	})
	if err != nil {
		return domain.Division{}, err
	}
	c.logger.Info("created division", "courseID", courseID, "divisionID", div.ID)
	return div, nil
}

// ImportResult counts what Import wrote
type ImportResult struct {
	Courses   int
	Divisions int
	Contents  int
}

// Import copies owner's whole catalog tree from src, replacing what the
// file held for that owner. Everything is fetched before anything is
// written, so a failed fetch leaves the file untouched.
func (c *Catalog) Import(ctx context.Context, owner domain.OwnerKey, src domain.CourseRepository) (ImportResult, error) {
	courses, err := src.ListCourses(ctx, owner)
	if err != nil {
		return ImportResult{}, fmt.Errorf("list courses: %w", err)
	}

	divisions := make(map[int64][]domain.Division, len(courses))
	contents := make(map[int64][]domain.Content)
	var res ImportResult
	res.Courses = len(courses)
	for _, course := range courses {
		divs, err := src.ListDivisions(ctx, course.ID)
		if err != nil {
			return ImportResult{}, fmt.Errorf("list divisions of course %d: %w", course.ID, err)
		}
		divisions[course.ID] = divs
		res.Divisions += len(divs)
		for _, div := range divs {
			items, err := src.ListContents(ctx, div.ID)
			if err != nil {
				return ImportResult{}, fmt.Errorf("list contents of division %d: %w", div.ID, err)
			}
			contents[div.ID] = items
			res.Contents += len(items)
		}
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		courseB := tx.Bucket(bucketCourses)
		divisionB := tx.Bucket(bucketDivisions)
		contentB := tx.Bucket(bucketContents)

		// drop the owner's previous tree
		old, _, err := getList[domain.Course](courseB, ownerKey(owner))
		if err != nil {
			return err
		}
		for _, course := range old {
			oldDivs, _, err := getList[domain.Division](divisionB, idKey(course.ID))
			if err != nil {
				return err
			}
			for _, div := range oldDivs {
				if err := contentB.Delete(idKey(div.ID)); err != nil {
					return err
				}
			}
			if err := divisionB.Delete(idKey(course.ID)); err != nil {
				return err
			}
		}

		if err := putList(courseB, ownerKey(owner), courses); err != nil {
			return err
		}
		for _, course := range courses {
			if err := bumpSequence(courseB, course.ID); err != nil {
				return err
			}
			if err := putList(divisionB, idKey(course.ID), divisions[course.ID]); err != nil {
				return err
			}
			for _, div := range divisions[course.ID] {
				if err := bumpSequence(divisionB, div.ID); err != nil {
					return err
				}
				if err := putList(contentB, idKey(div.ID), contents[div.ID]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	c.logger.Info("imported catalog", "owner", owner,
		"courses", res.Courses, "divisions", res.Divisions, "contents", res.Contents)
	return res, nil
}
