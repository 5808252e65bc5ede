package service

import (
	"context"
	"log"
	"strconv"

	"backend/internal/model"
	"backend/internal/repository"
)

type AuditLogResponse struct {
	ID         uint   `json:"id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

// AuditService records and lists security-sensitive events: account lifecycle
// transitions, role mutations and whitelist edits.
type AuditService interface {
	Record(ctx context.Context, userID *uint, action, entityID, entityName, details string)
	GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// Record is best-effort: an audit write failure is logged but never fails the
// operation that triggered it.
func (s *auditService) Record(ctx context.Context, userID *uint, action, entityID, entityName, details string) {
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    details,
	}
	if err := s.repo.Log(ctx, &entry); err != nil {
		log.Printf("Failed to write audit log (action=%s): %v", action, err)
	}
}

func (s *auditService) GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		username := "System"
		userID := ""
		if l.User != nil {
			username = l.User.Username
		}
		if l.UserID != nil {
			userID = strconv.FormatUint(uint64(*l.UserID), 10)
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID,
			UserID:     userID,
			Username:   username,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}
