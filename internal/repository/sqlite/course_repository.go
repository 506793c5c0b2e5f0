package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"teachassist/internal/apperr"
	"teachassist/internal/domain"
	"teachassist/internal/repository"
)

const createCoursesTable = `
CREATE TABLE IF NOT EXISTS courses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	teacher_id INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(teacher_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_courses_teacher_id ON courses(teacher_id);
`

const courseColumns = `id, title, description, teacher_id, status, created_at, updated_at`

type CourseRepository struct {
	db *sql.DB
}

func NewCourseRepository(db *sql.DB) repository.CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCoursesTable); err != nil {
		return fmt.Errorf("create courses table: %w", err)
	}
	return nil
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) (int64, error) {
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	if course.Status == "" {
		course.Status = domain.CourseStatusActive
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO courses (title, description, teacher_id, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		course.Title,
		course.Description,
		course.TeacherID,
		string(course.Status),
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert course: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("course last insert id: %w", err)
	}
	course.ID = id
	return id, nil
}

func (r *CourseRepository) Get(ctx context.Context, id int64) (*domain.Course, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)
	return scanCourse(row)
}

func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]domain.Course, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+courseColumns+`
FROM courses
WHERE teacher_id = ?
ORDER BY id ASC`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("query teacher courses: %w", err)
	}
	defer rows.Close()
	return collectCourses(rows)
}

func (r *CourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()
	return collectCourses(rows)
}

func (r *CourseRepository) Update(ctx context.Context, course *domain.Course) error {
	course.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE courses
SET title=?, description=?, status=?, updated_at=?
WHERE id=?`,
		course.Title,
		course.Description,
		string(course.Status),
		course.UpdatedAt,
		course.ID,
	)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("course update rows affected: %w", err)
	}
	if aff == 0 {
		return apperr.NotFound("course not found")
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	for _, table := range []string{"course_objectives", "course_syllabi", "course_materials"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE course_id=?`, id); err != nil {
			return fmt.Errorf("delete course content %s: %w", table, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("course delete rows affected: %w", err)
	}
	if aff == 0 {
		return apperr.NotFound("course not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit course delete: %w", err)
	}
	return nil
}

func (r *CourseRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return n, nil
}

func (r *CourseRepository) CountByStatus(ctx context.Context, status domain.CourseStatus) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses WHERE status=?`, string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count courses by status: %w", err)
	}
	return n, nil
}

func collectCourses(rows *sql.Rows) ([]domain.Course, error) {
	var courses []domain.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *course)
	}
	return courses, rows.Err()
}

func scanCourse(row interface {
	Scan(dest ...any) error
}) (*domain.Course, error) {
	var (
		course domain.Course
		status string
	)
	if err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.TeacherID,
		&status,
		&course.CreatedAt,
		&course.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("course not found")
		}
		return nil, fmt.Errorf("scan course: %w", err)
	}
	course.Status = domain.CourseStatus(status)
	return &course, nil
}
