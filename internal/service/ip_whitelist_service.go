package service

import (
	"context"
	"errors"
	"log"
	"net/netip"

	"backend/internal/model"
	"backend/internal/repository"

	"gorm.io/gorm"
)

// --- DTOs ---

type CreateWhitelistRequest struct {
	IPNetwork        string `json:"ip_network" binding:"required"`
	OrganizationName string `json:"organization_name"`
}

type UpdateWhitelistRequest struct {
	IPNetwork        *string `json:"ip_network"`
	OrganizationName *string `json:"organization_name"`
}

// --- Interface ---

// IPWhitelistService manages trusted CIDR ranges and answers containment
// queries for client addresses.
type IPWhitelistService interface {
	Add(ctx context.Context, req CreateWhitelistRequest) (*model.IPWhitelistEntry, error)
	Update(ctx context.Context, id uint, req UpdateWhitelistRequest) (*model.IPWhitelistEntry, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*model.IPWhitelistEntry, error)
	List(ctx context.Context) ([]model.IPWhitelistEntry, error)
	IsWhitelisted(ctx context.Context, clientIP string) (bool, error)
}

type ipWhitelistService struct {
	repo repository.IPWhitelistRepository
}

func NewIPWhitelistService(repo repository.IPWhitelistRepository) IPWhitelistService {
	return &ipWhitelistService{repo: repo}
}

// normalizeNetwork parses a CIDR string and returns its canonical masked form,
// so "192.168.1.17/24" is stored as "192.168.1.0/24".
func normalizeNetwork(network string) (string, error) {
	prefix, err := netip.ParsePrefix(network)
	if err != nil {
		return "", ErrInvalidNetwork
	}
	return prefix.Masked().String(), nil
}

func (s *ipWhitelistService) Add(ctx context.Context, req CreateWhitelistRequest) (*model.IPWhitelistEntry, error) {
	normalized, err := normalizeNetwork(req.IPNetwork)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByNetwork(ctx, normalized); err == nil {
		return nil, ErrDuplicateNetwork
	}

	entry := model.IPWhitelistEntry{
		IPNetwork:        normalized,
		OrganizationName: req.OrganizationName,
	}
	if err := s.repo.Create(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *ipWhitelistService) Update(ctx context.Context, id uint, req UpdateWhitelistRequest) (*model.IPWhitelistEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWhitelistNotFound
		}
		return nil, err
	}

	if req.IPNetwork != nil {
		normalized, err := normalizeNetwork(*req.IPNetwork)
		if err != nil {
			return nil, err
		}
		if existing, err := s.repo.FindByNetwork(ctx, normalized); err == nil && existing.ID != id {
			return nil, ErrDuplicateNetwork
		}
		entry.IPNetwork = normalized
	}
	if req.OrganizationName != nil {
		entry.OrganizationName = *req.OrganizationName
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *ipWhitelistService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWhitelistNotFound
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *ipWhitelistService) Get(ctx context.Context, id uint) (*model.IPWhitelistEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWhitelistNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *ipWhitelistService) List(ctx context.Context) ([]model.IPWhitelistEntry, error) {
	return s.repo.ListAll(ctx)
}

// IsWhitelisted reports whether clientIP falls inside any stored network.
// Unparseable input fails closed; malformed stored entries are skipped. The
// linear scan is fine at the registry sizes seen here (tens of entries).
func (s *ipWhitelistService) IsWhitelisted(ctx context.Context, clientIP string) (bool, error) {
	addr, err := netip.ParseAddr(clientIP)
	if err != nil {
		return false, nil
	}
	addr = addr.Unmap()

	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return false, err
	}

	for _, entry := range entries {
		prefix, err := netip.ParsePrefix(entry.IPNetwork)
		if err != nil {
			log.Printf("Skipping malformed whitelist entry %d: %q", entry.ID, entry.IPNetwork)
			continue
		}
		if prefix.Contains(addr) {
			return true, nil
		}
	}
	return false, nil
}
