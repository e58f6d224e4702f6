package panel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/walkroutes/internal/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListRoutes(ctx context.Context) ([]models.Route, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Route), args.Error(1)
}

func (m *MockStore) DeleteRoute(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(route models.Route) error {
	args := m.Called(route)
	return args.Error(0)
}

type fakeDialog struct {
	confirm bool
	alerts  []string
}

func (d *fakeDialog) Alert(msg string)    { d.alerts = append(d.alerts, msg) }
func (d *fakeDialog) Confirm(string) bool { return d.confirm }

var (
	routeA = models.Route{Name: "Arboretum", Distance: 2.25, Duration: 31}
	routeB = models.Route{Name: "Karura"}
)

func TestPanel_Mount(t *testing.T) {
	store := new(MockStore)
	store.On("ListRoutes", mock.Anything).Return([]models.Route{routeA, routeB}, nil)
	p := New(store, new(MockLoader), &fakeDialog{})

	assert.True(t, p.Loading())
	assert.Equal(t, "Loading saved routes...", p.View())

	p.Mount(context.Background())
	assert.False(t, p.Loading())
	assert.Equal(t, []models.Route{routeA, routeB}, p.Routes())
	assert.Equal(t, "Saved Routes\n 1. Arboretum  (Distance: 2.25 km, Duration: 31 min)\n 2. Karura\n", p.View())
}

func TestPanel_MountFailure(t *testing.T) {
	store := new(MockStore)
	store.On("ListRoutes", mock.Anything).Return(nil, errors.New("connection refused"))
	p := New(store, new(MockLoader), &fakeDialog{})

	p.Mount(context.Background())
	assert.False(t, p.Loading())
	assert.Empty(t, p.Routes())
	assert.Equal(t, "No saved routes yet.", p.View())
}

func TestPanel_Load(t *testing.T) {
	store := new(MockStore)
	store.On("ListRoutes", mock.Anything).Return([]models.Route{routeA, routeB}, nil)
	loader := new(MockLoader)
	loader.On("Load", routeB).Return(nil)
	p := New(store, loader, &fakeDialog{})
	p.Mount(context.Background())

	require.NoError(t, p.Load(1))
	assert.Error(t, p.Load(2))
	assert.Error(t, p.Load(-1))
	loader.AssertExpectations(t)
}

func TestPanel_DeleteRefetches(t *testing.T) {
	store := new(MockStore)
	store.On("ListRoutes", mock.Anything).Return([]models.Route{routeA, routeB}, nil).Once()
	store.On("DeleteRoute", mock.Anything, "id-a").Return(nil)
	store.On("ListRoutes", mock.Anything).Return([]models.Route{routeB}, nil).Once()
	p := New(store, new(MockLoader), &fakeDialog{confirm: true})
	p.Mount(context.Background())

	assert.True(t, p.Delete(context.Background(), "id-a"))
	assert.Equal(t, []models.Route{routeB}, p.Routes())
	store.AssertNumberOfCalls(t, "ListRoutes", 2)
}

func TestPanel_DeleteNotConfirmed(t *testing.T) {
	store := new(MockStore)
	store.On("ListRoutes", mock.Anything).Return([]models.Route{routeA}, nil)
	p := New(store, new(MockLoader), &fakeDialog{confirm: false})
	p.Mount(context.Background())

	assert.False(t, p.Delete(context.Background(), "id-a"))
	store.AssertNotCalled(t, "DeleteRoute", mock.Anything, mock.Anything)
	store.AssertNumberOfCalls(t, "ListRoutes", 1)
}

func TestPanel_DeleteFailure(t *testing.T) {
	store := new(MockStore)
	store.On("ListRoutes", mock.Anything).Return([]models.Route{routeA}, nil)
	store.On("DeleteRoute", mock.Anything, "id-a").Return(errors.New("500"))
	dialog := &fakeDialog{confirm: true}
	p := New(store, new(MockLoader), dialog)
	p.Mount(context.Background())

	assert.False(t, p.Delete(context.Background(), "id-a"))
	assert.Equal(t, []string{"Failed to delete route."}, dialog.alerts)
	assert.Equal(t, []models.Route{routeA}, p.Routes(), "no optimistic removal")
	store.AssertNumberOfCalls(t, "ListRoutes", 1)
}
