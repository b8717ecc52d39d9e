package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	name             string
	initializeCalled bool
	initializeError  error
	initOrder        *[]string
}

func NewMockService(name string) *MockService {
	return &MockService{name: name}
}

func (m *MockService) Name() string {
	return m.name
}

func (m *MockService) Initialize() error {
	m.initializeCalled = true
	if m.initOrder != nil {
		*m.initOrder = append(*m.initOrder, m.name)
	}
	return m.initializeError
}

// withGlobalRegistry swaps in a fresh global registry for the duration of a test.
func withGlobalRegistry(t *testing.T) *Registry {
	t.Helper()
	original := GetGlobalRegistry()
	registry := NewRegistry()
	SetGlobalRegistry(registry)
	t.Cleanup(func() { SetGlobalRegistry(original) })
	return registry
}

func TestRegistry_RegisterService(t *testing.T) {
	registry := NewRegistry()
	first := NewMockService("browser")

	require.NoError(t, registry.RegisterService(first))
	assert.True(t, registry.HasService("browser"))
	assert.False(t, registry.HasService("render"))

	err := registry.RegisterService(NewMockService("browser"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service browser already registered")

	retrieved, err := registry.GetService("browser")
	require.NoError(t, err)
	assert.Same(t, first, retrieved)
}

func TestRegistry_GetService_NotFound(t *testing.T) {
	registry := NewRegistry()

	service, err := registry.GetService("nonexistent")
	assert.Nil(t, service)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRegistry_InitializeAll_RegistrationOrder(t *testing.T) {
	registry := NewRegistry()
	var order []string
	for _, name := range []string{"theme", "markdown", "render", "browser"} {
		service := NewMockService(name)
		service.initOrder = &order
		require.NoError(t, registry.RegisterService(service))
	}

	require.NoError(t, registry.InitializeAll())
	assert.Equal(t, []string{"theme", "markdown", "render", "browser"}, order)
}

func TestRegistry_InitializeAll_WithError(t *testing.T) {
	registry := NewRegistry()
	failing := NewMockService("service2")
	failing.initializeError = errors.New("initialization failed")
	last := NewMockService("service3")

	require.NoError(t, registry.RegisterService(NewMockService("service1")))
	require.NoError(t, registry.RegisterService(failing))
	require.NoError(t, registry.RegisterService(last))

	err := registry.InitializeAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize service service2")
	assert.Contains(t, err.Error(), "initialization failed")
	assert.False(t, last.initializeCalled)
}

func TestRegistry_GetAllServicesIsCopy(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterService(NewMockService("one")))

	all := registry.GetAllServices()
	all["two"] = NewMockService("two")

	assert.False(t, registry.HasService("two"))
	assert.Len(t, registry.GetAllServices(), 1)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()
	numGoroutines := 10
	servicesPerGoroutine := 5

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < servicesPerGoroutine; j++ {
				assert.NoError(t, registry.RegisterService(NewMockService(fmt.Sprintf("service_%d_%d", id, j))))
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, registry.GetAllServices(), numGoroutines*servicesPerGoroutine)
	require.NoError(t, registry.InitializeAll())
	for _, service := range registry.GetAllServices() {
		assert.True(t, service.(*MockService).initializeCalled)
	}
}

func TestLookup(t *testing.T) {
	registry := withGlobalRegistry(t)
	require.NoError(t, registry.RegisterService(NewMockService("diff")))

	_, err := lookup[*DiffService]("diff")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type assertion failed")

	_, err = lookup[*DiffService]("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service not registered")
}
