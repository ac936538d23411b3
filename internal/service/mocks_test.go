package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
)

// MockClientRepo
type MockClientRepo struct {
	mock.Mock
}

func (m *MockClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

// MockVehicleRepo
type MockVehicleRepo struct {
	mock.Mock
}

func (m *MockVehicleRepo) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) FindByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	args := m.Called(ctx, plate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) ListByStatus(ctx context.Context, status domain.VehicleStatus) ([]domain.Vehicle, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) List(ctx context.Context, filter domain.RentalFilter, after *domain.RentalCursor, limit int) ([]domain.Rental, error) {
	args := m.Called(ctx, filter, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListByClient(ctx context.Context, clientID string) ([]domain.Rental, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListByVehicle(ctx context.Context, vehicleID string) ([]domain.Rental, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}

// MockTxRunner runs nothing and returns the configured error.
type MockTxRunner struct {
	mock.Mock
}

func (m *MockTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendAdminNotification(ctx context.Context, adminEmail, subject, message string) error {
	args := m.Called(ctx, adminEmail, subject, message)
	return args.Error(0)
}

func mockStore(clients *MockClientRepo, vehicles *MockVehicleRepo, rentals *MockRentalRepo, tx *MockTxRunner) *repository.Store {
	return &repository.Store{
		ClientRepository:  clients,
		VehicleRepository: vehicles,
		RentalRepository:  rentals,
		TxRunner:          tx,
	}
}
