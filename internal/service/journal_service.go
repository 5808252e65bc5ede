package service

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/internal/repository"

	"gorm.io/gorm"
)

type CreateJournalRequest struct {
	Title       string `json:"title" binding:"required"`
	ISSN        string `json:"issn" binding:"required"`
	EISSN       string `json:"eissn"`
	Publisher   string `json:"publisher"`
	Description string `json:"description"`
	Site        string `json:"site"`
}

type UpdateJournalRequest struct {
	Title       string `json:"title"`
	ISSN        string `json:"issn"`
	EISSN       string `json:"eissn"`
	Publisher   string `json:"publisher"`
	Description string `json:"description"`
	Site        string `json:"site"`
}

// JournalService covers the journal catalog resource. The remaining catalog
// resources (classification codes, sections, contacts) follow the same shape.
type JournalService interface {
	CreateJournal(ctx context.Context, req CreateJournalRequest) (*model.Journal, error)
	GetJournal(ctx context.Context, id uint) (*model.Journal, error)
	ListJournals(ctx context.Context, page, limit int) ([]model.Journal, int64, error)
	UpdateJournal(ctx context.Context, id uint, req UpdateJournalRequest) (*model.Journal, error)
	DeleteJournal(ctx context.Context, id uint) error
}

type journalService struct {
	repo repository.JournalRepository
}

func NewJournalService(repo repository.JournalRepository) JournalService {
	return &journalService{repo: repo}
}

func (s *journalService) CreateJournal(ctx context.Context, req CreateJournalRequest) (*model.Journal, error) {
	journal := model.Journal{
		Title:       req.Title,
		ISSN:        req.ISSN,
		EISSN:       req.EISSN,
		Publisher:   req.Publisher,
		Description: req.Description,
		Site:        req.Site,
	}
	if err := s.repo.Create(ctx, &journal); err != nil {
		return nil, err
	}
	return &journal, nil
}

func (s *journalService) GetJournal(ctx context.Context, id uint) (*model.Journal, error) {
	journal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJournalNotFound
		}
		return nil, err
	}
	return journal, nil
}

func (s *journalService) ListJournals(ctx context.Context, page, limit int) ([]model.Journal, int64, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *journalService) UpdateJournal(ctx context.Context, id uint, req UpdateJournalRequest) (*model.Journal, error) {
	journal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJournalNotFound
		}
		return nil, err
	}

	if req.Title != "" {
		journal.Title = req.Title
	}
	if req.ISSN != "" {
		journal.ISSN = req.ISSN
	}
	if req.EISSN != "" {
		journal.EISSN = req.EISSN
	}
	if req.Publisher != "" {
		journal.Publisher = req.Publisher
	}
	if req.Description != "" {
		journal.Description = req.Description
	}
	if req.Site != "" {
		journal.Site = req.Site
	}

	if err := s.repo.Update(ctx, journal); err != nil {
		return nil, err
	}
	return journal, nil
}

func (s *journalService) DeleteJournal(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJournalNotFound
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}
