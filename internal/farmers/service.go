package farmers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/agrireg/agrireg/internal/shared"
)

// Service handles farmer registration business logic.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService builds a Service. audit may be nil.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// Create registers a farmer with a generated code and pending status.
func (s *Service) Create(ctx context.Context, req CreateFarmerRequest, createdBy int64) (*Farmer, error) {
	farmer := Farmer{
		Code:       generateCode(),
		Name:       strings.TrimSpace(req.Name),
		NationalID: req.NationalID,
		Phone:      req.Phone,
		Village:    req.Village,
		ClusterID:  req.ClusterID,
		AgentID:    req.AgentID,
		Status:     StatusPending,
		CreatedBy:  createdBy,
	}

	id, err := s.repo.Create(ctx, farmer)
	if err != nil {
		return nil, err
	}

	s.record(ctx, createdBy, "farmer.create", id, map[string]any{"code": farmer.Code})
	return s.repo.Get(ctx, id)
}

// Update applies a partial patch.
func (s *Service) Update(ctx context.Context, id int64, req UpdateFarmerRequest, updatedBy int64) (*Farmer, error) {
	updates := make(map[string]any)

	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.NationalID != nil {
		updates["national_id"] = *req.NationalID
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Village != nil {
		updates["village"] = *req.Village
	}
	if req.ClusterID != nil {
		updates["cluster_id"] = *req.ClusterID
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	s.record(ctx, updatedBy, "farmer.update", id, nil)
	return s.repo.Get(ctx, id)
}

// Get fetches one farmer.
func (s *Service) Get(ctx context.Context, id int64) (*Farmer, error) {
	return s.repo.Get(ctx, id)
}

// List returns a filtered page of farmers with pagination metadata.
func (s *Service) List(ctx context.Context, req ListFarmersRequest) ([]Farmer, shared.Pagination, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	list, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	page := req.Offset/req.Limit + 1
	return list, shared.NewPagination(page, req.Limit, total), nil
}

// Delete removes a farmer record.
func (s *Service) Delete(ctx context.Context, id int64, deletedBy int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, deletedBy, "farmer.delete", id, nil)
	return nil
}

// ExportCSV writes the full register as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	list, err := s.repo.All(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"code", "name", "national_id", "phone", "village", "status", "registered_at"}); err != nil {
		return err
	}
	for _, f := range list {
		row := []string{
			f.Code, f.Name,
			deref(f.NationalID), deref(f.Phone), deref(f.Village),
			f.Status, f.CreatedAt.Format("2006-01-02"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Service) record(ctx context.Context, actorID int64, action string, farmerID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "farmer",
		EntityID: strconv.FormatInt(farmerID, 10),
		Meta:     meta,
	})
}

func generateCode() string {
	return fmt.Sprintf("FRM-%s", strings.ToUpper(uuid.NewString()[:8]))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
