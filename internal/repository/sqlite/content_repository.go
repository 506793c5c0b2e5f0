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

const createContentTables = `
CREATE TABLE IF NOT EXISTS course_objectives (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	course_id INTEGER NOT NULL UNIQUE,
	course_content TEXT NOT NULL DEFAULT '',
	teaching_target TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS course_syllabi (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	course_id INTEGER NOT NULL UNIQUE,
	content TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS course_materials (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	course_id INTEGER NOT NULL UNIQUE,
	content TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type ContentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) repository.ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createContentTables); err != nil {
		return fmt.Errorf("create content tables: %w", err)
	}
	return nil
}

func (r *ContentRepository) GetObjective(ctx context.Context, courseID int64) (*domain.CourseObjective, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, course_id, course_content, teaching_target, created_at, updated_at
FROM course_objectives
WHERE course_id = ?`, courseID)

	var obj domain.CourseObjective
	if err := row.Scan(&obj.ID, &obj.CourseID, &obj.CourseContent, &obj.TeachingTarget, &obj.CreatedAt, &obj.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("course objective not found")
		}
		return nil, fmt.Errorf("scan course objective: %w", err)
	}
	return &obj, nil
}

func (r *ContentRepository) SaveObjective(ctx context.Context, courseID int64, courseContent, teachingTarget string) (*domain.CourseObjective, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO course_objectives (course_id, course_content, teaching_target, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(course_id) DO UPDATE SET
	course_content=excluded.course_content,
	teaching_target=excluded.teaching_target,
	updated_at=excluded.updated_at`,
		courseID, courseContent, teachingTarget, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("save course objective: %w", err)
	}
	return r.GetObjective(ctx, courseID)
}

func (r *ContentRepository) GetSyllabus(ctx context.Context, courseID int64) (*domain.CourseSyllabus, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, course_id, content, created_at, updated_at
FROM course_syllabi
WHERE course_id = ?`, courseID)

	var syl domain.CourseSyllabus
	if err := row.Scan(&syl.ID, &syl.CourseID, &syl.Content, &syl.CreatedAt, &syl.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("course syllabus not found")
		}
		return nil, fmt.Errorf("scan course syllabus: %w", err)
	}
	return &syl, nil
}

func (r *ContentRepository) SaveSyllabus(ctx context.Context, courseID int64, content string) (*domain.CourseSyllabus, error) {
	if err := r.upsertDocument(ctx, "course_syllabi", courseID, content); err != nil {
		return nil, err
	}
	return r.GetSyllabus(ctx, courseID)
}

func (r *ContentRepository) GetMaterial(ctx context.Context, courseID int64) (*domain.CourseMaterial, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, course_id, content, created_at, updated_at
FROM course_materials
WHERE course_id = ?`, courseID)

	var mat domain.CourseMaterial
	if err := row.Scan(&mat.ID, &mat.CourseID, &mat.Content, &mat.CreatedAt, &mat.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("course material not found")
		}
		return nil, fmt.Errorf("scan course material: %w", err)
	}
	return &mat, nil
}

func (r *ContentRepository) SaveMaterial(ctx context.Context, courseID int64, content string) (*domain.CourseMaterial, error) {
	if err := r.upsertDocument(ctx, "course_materials", courseID, content); err != nil {
		return nil, err
	}
	return r.GetMaterial(ctx, courseID)
}

func (r *ContentRepository) upsertDocument(ctx context.Context, table string, courseID int64, content string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO `+table+` (course_id, content, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(course_id) DO UPDATE SET
	content=excluded.content,
	updated_at=excluded.updated_at`,
		courseID, content, now, now,
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", table, err)
	}
	return nil
}
