package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"gorm.io/gorm"
)

// maxRoleDepth bounds the ancestor walk. Cycles are rejected at write time,
// but a bounded walk keeps a corrupted chain from looping forever.
const maxRoleDepth = 32

const roleGraphTTL = 5 * time.Minute

// --- DTOs ---

type CreateRoleRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

type UpdateRoleRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

type RoleResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	ParentID *uint  `json:"parent_id"`
}

// --- Interface ---

// RoleService manages the role forest and answers hierarchical role checks.
type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error)
	UpdateRole(ctx context.Context, id uint, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, id uint) error
	GetRoleByName(ctx context.Context, name string) (*model.Role, error)
	GetRoleByID(ctx context.Context, id uint) (*model.Role, error)
	HasRole(ctx context.Context, roleID uint, requiredRoleName string) (bool, error)
	SeedDefaultRoles(ctx context.Context) error
}

type roleService struct {
	repo repository.RoleRepository

	// Cached snapshot of the whole role forest, keyed by id. Small (a handful
	// of rows), reloaded on TTL expiry and invalidated on every mutation.
	mu        sync.RWMutex
	graph     map[uint]model.Role
	expiresAt time.Time
}

func NewRoleService(repo repository.RoleRepository) RoleService {
	return &roleService{repo: repo}
}

// --- Implementation ---

func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, RoleResponse{ID: r.ID, Name: r.Name, ParentID: r.ParentID})
	}
	return res, nil
}

func (s *roleService) CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error) {
	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, ErrRoleExists
	}

	if req.ParentID != nil {
		if _, err := s.repo.FindByID(ctx, *req.ParentID); err != nil {
			return nil, ErrRoleNotFound
		}
	}

	role := model.Role{Name: req.Name, ParentID: req.ParentID}
	if err := s.repo.Create(ctx, &role); err != nil {
		return nil, err
	}

	s.invalidateGraph()
	return &RoleResponse{ID: role.ID, Name: role.Name, ParentID: role.ParentID}, nil
}

func (s *roleService) UpdateRole(ctx context.Context, id uint, req UpdateRoleRequest) (*RoleResponse, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, ErrRoleCycle
		}
		if err := s.checkNoCycle(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
	}

	role.Name = req.Name
	role.ParentID = req.ParentID

	if err := s.repo.Update(ctx, role); err != nil {
		return nil, err
	}

	s.invalidateGraph()
	return &RoleResponse{ID: role.ID, Name: role.Name, ParentID: role.ParentID}, nil
}

func (s *roleService) DeleteRole(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return err
	}

	count, err := s.repo.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrRoleInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateGraph()
	return nil
}

func (s *roleService) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	role, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return role, nil
}

func (s *roleService) GetRoleByID(ctx context.Context, id uint) (*model.Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return role, nil
}

// HasRole walks the parent chain of roleID upward and reports whether any
// ancestor (the role itself included) carries requiredRoleName. The walk runs
// against the in-memory snapshot, so no I/O happens per hop.
func (s *roleService) HasRole(ctx context.Context, roleID uint, requiredRoleName string) (bool, error) {
	graph, err := s.loadGraph(ctx)
	if err != nil {
		return false, err
	}

	current, ok := graph[roleID]
	for depth := 0; ok && depth < maxRoleDepth; depth++ {
		if current.Name == requiredRoleName {
			return true, nil
		}
		if current.ParentID == nil {
			return false, nil
		}
		current, ok = graph[*current.ParentID]
	}
	return false, nil
}

// SeedDefaultRoles ensures the well-known chain guest <- user <- admin exists.
// Called once at startup; a failure here is fatal for the process.
func (s *roleService) SeedDefaultRoles(ctx context.Context) error {
	parentID := (*uint)(nil)
	for _, name := range []string{model.RoleGuest, model.RoleUser, model.RoleAdmin} {
		role, err := s.repo.FindByName(ctx, name)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			role = &model.Role{Name: name, ParentID: parentID}
			if err := s.repo.Create(ctx, role); err != nil {
				return err
			}
		}
		parentID = &role.ID
	}

	s.invalidateGraph()
	return nil
}

// checkNoCycle rejects a parent update that would make roleID its own
// ancestor. Walks from the proposed parent upward through the stored chain.
func (s *roleService) checkNoCycle(ctx context.Context, roleID, parentID uint) error {
	currentID := parentID
	for depth := 0; depth < maxRoleDepth; depth++ {
		if currentID == roleID {
			return ErrRoleCycle
		}
		parent, err := s.repo.FindByID(ctx, currentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		currentID = *parent.ParentID
	}
	return ErrRoleCycle
}

func (s *roleService) loadGraph(ctx context.Context) (map[uint]model.Role, error) {
	s.mu.RLock()
	if s.graph != nil && time.Now().Before(s.expiresAt) {
		graph := s.graph
		s.mu.RUnlock()
		return graph, nil
	}
	s.mu.RUnlock()

	roles, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	graph := make(map[uint]model.Role, len(roles))
	for _, r := range roles {
		graph[r.ID] = r
	}

	s.mu.Lock()
	s.graph = graph
	s.expiresAt = time.Now().Add(roleGraphTTL)
	s.mu.Unlock()

	return graph, nil
}

func (s *roleService) invalidateGraph() {
	s.mu.Lock()
	s.graph = nil
	s.mu.Unlock()
}
