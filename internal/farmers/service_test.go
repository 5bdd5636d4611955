package farmers

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrireg/agrireg/internal/rbac"
)

type mockRepository struct {
	farmers map[int64]*Farmer
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{farmers: make(map[int64]*Farmer), nextID: 1}
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Farmer, error) {
	farmer, ok := m.farmers[id]
	if !ok {
		return nil, &rbac.NotFoundError{Kind: "farmer", ID: id}
	}
	copied := *farmer
	return &copied, nil
}

func (m *mockRepository) List(ctx context.Context, req ListFarmersRequest) ([]Farmer, int, error) {
	var filtered []Farmer
	for _, farmer := range m.farmers {
		if req.Status != nil && farmer.Status != *req.Status {
			continue
		}
		if req.Search != nil && !strings.Contains(strings.ToLower(farmer.Name), strings.ToLower(*req.Search)) {
			continue
		}
		filtered = append(filtered, *farmer)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID > filtered[j].ID })
	total := len(filtered)
	if req.Offset >= total {
		return nil, total, nil
	}
	end := req.Offset + req.Limit
	if end > total {
		end = total
	}
	return filtered[req.Offset:end], total, nil
}

func (m *mockRepository) All(ctx context.Context) ([]Farmer, error) {
	var list []Farmer
	for _, farmer := range m.farmers {
		list = append(list, *farmer)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

func (m *mockRepository) Create(ctx context.Context, farmer Farmer) (int64, error) {
	farmer.ID = m.nextID
	farmer.CreatedAt = time.Now()
	farmer.UpdatedAt = farmer.CreatedAt
	m.nextID++
	m.farmers[farmer.ID] = &farmer
	return farmer.ID, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	farmer, ok := m.farmers[id]
	if !ok {
		return &rbac.NotFoundError{Kind: "farmer", ID: id}
	}
	if v, ok := updates["name"]; ok {
		farmer.Name = v.(string)
	}
	if v, ok := updates["status"]; ok {
		farmer.Status = v.(string)
	}
	if v, ok := updates["village"]; ok {
		village := v.(string)
		farmer.Village = &village
	}
	farmer.UpdatedAt = time.Now()
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.farmers[id]; !ok {
		return &rbac.NotFoundError{Kind: "farmer", ID: id}
	}
	delete(m.farmers, id)
	return nil
}

func TestCreateFarmer(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	farmer, err := svc.Create(context.Background(), CreateFarmerRequest{
		Name:    "  Asha Devi ",
		AgentID: 4,
	}, 9)
	require.NoError(t, err)

	assert.Equal(t, "Asha Devi", farmer.Name)
	assert.Equal(t, StatusPending, farmer.Status)
	assert.Equal(t, int64(4), farmer.AgentID)
	assert.Equal(t, int64(9), farmer.CreatedBy)
	assert.True(t, strings.HasPrefix(farmer.Code, "FRM-"))
}

func TestUpdateFarmerStatus(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateFarmerRequest{Name: "Budi", AgentID: 1}, 1)
	require.NoError(t, err)

	status := StatusVerified
	updated, err := svc.Update(ctx, created.ID, UpdateFarmerRequest{Status: &status}, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, updated.Status)
}

func TestUpdateMissingFarmer(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	status := StatusVerified
	_, err := svc.Update(context.Background(), 404, UpdateFarmerRequest{Status: &status}, 1)
	var nf *rbac.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestListFarmersPagination(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := svc.Create(ctx, CreateFarmerRequest{Name: "Farmer", AgentID: 1}, 1)
		require.NoError(t, err)
	}

	list, pagination, err := svc.List(ctx, ListFarmersRequest{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 10)
	assert.Equal(t, 25, pagination.Total)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, 1, pagination.Page)

	list, pagination, err = svc.List(ctx, ListFarmersRequest{Limit: 10, Offset: 20})
	require.NoError(t, err)
	assert.Len(t, list, 5)
	assert.Equal(t, 3, pagination.Page)
}

func TestListFarmersStatusFilter(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateFarmerRequest{Name: "Asha", AgentID: 1}, 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateFarmerRequest{Name: "Budi", AgentID: 1}, 1)
	require.NoError(t, err)

	status := StatusVerified
	_, err = svc.Update(ctx, created.ID, UpdateFarmerRequest{Status: &status}, 1)
	require.NoError(t, err)

	list, _, err := svc.List(ctx, ListFarmersRequest{Status: &status, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Asha", list[0].Name)
}

func TestDeleteFarmer(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateFarmerRequest{Name: "Temp", AgentID: 1}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID, 1))
	_, err = svc.Get(ctx, created.ID)
	var nf *rbac.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestExportCSV(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	village := "Sukamaju"
	created, err := svc.Create(ctx, CreateFarmerRequest{Name: "Budi", Village: &village, AgentID: 1}, 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "code,name,national_id,phone,village,status,registered_at", lines[0])
	assert.Contains(t, lines[1], created.Code)
	assert.Contains(t, lines[1], "Budi")
	assert.Contains(t, lines[1], "Sukamaju")
}
