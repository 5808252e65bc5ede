package repository

import (
	"backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type IPWhitelistRepository interface {
	Create(ctx context.Context, entry *model.IPWhitelistEntry) error
	Update(ctx context.Context, entry *model.IPWhitelistEntry) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.IPWhitelistEntry, error)
	FindByNetwork(ctx context.Context, network string) (*model.IPWhitelistEntry, error)
	ListAll(ctx context.Context) ([]model.IPWhitelistEntry, error)
}

type ipWhitelistRepository struct {
	db *gorm.DB
}

func NewIPWhitelistRepository(db *gorm.DB) IPWhitelistRepository {
	return &ipWhitelistRepository{db: db}
}

func (r *ipWhitelistRepository) Create(ctx context.Context, entry *model.IPWhitelistEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *ipWhitelistRepository) Update(ctx context.Context, entry *model.IPWhitelistEntry) error {
	return GetDB(ctx, r.db).Save(entry).Error
}

func (r *ipWhitelistRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.IPWhitelistEntry{}).Error
}

func (r *ipWhitelistRepository) FindByID(ctx context.Context, id uint) (*model.IPWhitelistEntry, error) {
	var entry model.IPWhitelistEntry
	if err := GetDB(ctx, r.db).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ipWhitelistRepository) FindByNetwork(ctx context.Context, network string) (*model.IPWhitelistEntry, error) {
	var entry model.IPWhitelistEntry
	if err := GetDB(ctx, r.db).First(&entry, "ip_network = ?", network).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ipWhitelistRepository) ListAll(ctx context.Context) ([]model.IPWhitelistEntry, error) {
	var entries []model.IPWhitelistEntry
	if err := GetDB(ctx, r.db).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
