package postgres

import (
	"context"
	"fmt"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type SubjectPostgreSQL struct {
	db *gorm.DB
}

func NewSubjectPostgreSQL(db *gorm.DB) repositories.SubjectRepository {
	return &SubjectPostgreSQL{db: db}
}

func (s *SubjectPostgreSQL) Create(ctx context.Context, subject *models.Subject) error {
	exists, err := s.ExistsByName(ctx, subject.Name, nil)
	if err != nil {
		return fmt.Errorf("failed to check subject name: %w", err)
	}
	if exists {
		return fmt.Errorf("subject '%s' already exists", subject.Name)
	}

	if err := s.db.WithContext(ctx).Create(subject).Error; err != nil {
		return fmt.Errorf("failed to create subject: %w", err)
	}
	return nil
}

func (s *SubjectPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Subject, error) {
	var subject models.Subject
	if err := s.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return nil, err
	}

	var quizCount int64
	s.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("subject_id = ?", id).
		Count(&quizCount)
	subject.QuizCount = int(quizCount)

	return &subject, nil
}

func (s *SubjectPostgreSQL) Update(ctx context.Context, subject *models.Subject) error {
	exists, err := s.ExistsByName(ctx, subject.Name, &subject.ID)
	if err != nil {
		return fmt.Errorf("failed to check subject name: %w", err)
	}
	if exists {
		return fmt.Errorf("subject '%s' already exists", subject.Name)
	}

	if err := s.db.WithContext(ctx).Save(subject).Error; err != nil {
		return fmt.Errorf("failed to update subject: %w", err)
	}
	return nil
}

func (s *SubjectPostgreSQL) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Subject{}, id).Error
}

func (s *SubjectPostgreSQL) List(ctx context.Context, limit, offset int) ([]*models.Subject, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Subject{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Order("name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var subjects []*models.Subject
	if err := query.Find(&subjects).Error; err != nil {
		return nil, 0, err
	}

	// Fill quiz counts in one grouped query
	type subjectCount struct {
		SubjectID uint
		Count     int
	}
	var counts []subjectCount
	s.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Select("subject_id, COUNT(*) as count").
		Group("subject_id").
		Scan(&counts)

	countByID := make(map[uint]int, len(counts))
	for _, c := range counts {
		countByID[c.SubjectID] = c.Count
	}
	for _, subject := range subjects {
		subject.QuizCount = countByID[subject.ID]
	}

	return subjects, total, nil
}

func (s *SubjectPostgreSQL) ExistsByName(ctx context.Context, name string, excludeID *uint) (bool, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Subject{}).
		Where("name = ?", name)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (s *SubjectPostgreSQL) HasQuizzes(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("subject_id = ?", id).
		Count(&count).Error
	return count > 0, err
}
