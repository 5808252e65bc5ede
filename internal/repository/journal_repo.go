package repository

import (
	"backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type JournalRepository interface {
	Create(ctx context.Context, journal *model.Journal) error
	GetByID(ctx context.Context, id uint) (*model.Journal, error)
	List(ctx context.Context, page, limit int) ([]model.Journal, int64, error)
	Update(ctx context.Context, journal *model.Journal) error
	Delete(ctx context.Context, id uint) error
}

type journalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) Create(ctx context.Context, journal *model.Journal) error {
	return GetDB(ctx, r.db).Create(journal).Error
}

func (r *journalRepository) GetByID(ctx context.Context, id uint) (*model.Journal, error) {
	var journal model.Journal
	if err := GetDB(ctx, r.db).First(&journal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &journal, nil
}

func (r *journalRepository) List(ctx context.Context, page, limit int) ([]model.Journal, int64, error) {
	var journals []model.Journal
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Journal{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("title ASC").Offset(offset).Limit(limit).Find(&journals).Error; err != nil {
		return nil, 0, err
	}

	return journals, total, nil
}

func (r *journalRepository) Update(ctx context.Context, journal *model.Journal) error {
	return GetDB(ctx, r.db).Save(journal).Error
}

func (r *journalRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Journal{}).Error
}
