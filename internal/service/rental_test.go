package service_test

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-rental-backend/internal/apperr"
	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
	"vehicle-rental-backend/internal/repository/memory"
	"vehicle-rental-backend/internal/service"
)

const (
	clientID = "08832661489"
	plate    = "TST1234"
)

func newEngine(t *testing.T) (service.RentalService, *memory.DB, *repository.Store) {
	t.Helper()
	db := memory.NewDB()
	db.PutClient(domain.Client{ID: clientID, Name: "Maria Silva", Status: domain.ClientStatusActive})
	db.PutVehicle(domain.Vehicle{ID: "v1", Plate: plate, Status: domain.VehicleStatusAvailable})
	store := memory.NewStore(db)
	return service.NewRentalService(store, service.Pagination{DefaultLimit: 10, MaxLimit: 100}), db, store
}

func scenarioA() service.CreateRentalInput {
	return service.CreateRentalInput{
		ClientID:  clientID,
		Plate:     plate,
		StartDate: "20/12/2024",
		EndDate:   "27/12/2024",
		Amount:    500.00,
	}
}

func vehicleStatus(t *testing.T, store *repository.Store, id string) domain.VehicleStatus {
	t.Helper()
	v, err := store.VehicleRepository.GetByID(context.Background(), id)
	require.NoError(t, err)
	return v.Status
}

func countRentals(t *testing.T, store *repository.Store) int {
	t.Helper()
	rentals, err := store.RentalRepository.List(context.Background(), domain.RentalFilter{}, nil, 1000)
	require.NoError(t, err)
	return len(rentals)
}

func TestRentalService_CreateRental(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, _, store := newEngine(t)

		rental, err := svc.CreateRental(ctx, scenarioA())
		require.NoError(t, err)
		assert.NotEmpty(t, rental.ID)
		assert.Equal(t, domain.RentalStatusActive, rental.Status)
		assert.Equal(t, "v1", rental.VehicleID)
		assert.Equal(t, domain.VehicleStatusRented, vehicleStatus(t, store, "v1"))
	})

	t.Run("Normalizes input", func(t *testing.T) {
		svc, _, _ := newEngine(t)

		in := scenarioA()
		in.ClientID = "088.326.614-89"
		in.Plate = "tst-1234"
		in.StartDate = "2024-12-20"
		in.Amount = 199.999
		in.AdditionalServiceIDs = []string{"gps", "child-seat"}

		rental, err := svc.CreateRental(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, clientID, rental.ClientID)
		assert.Equal(t, plate, rental.Plate)
		assert.Equal(t, time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), rental.StartDate)
		assert.True(t, rental.Amount.Equal(decimal.NewFromInt(200)))
		assert.Equal(t, []string{"gps", "child-seat"}, rental.AdditionalServiceIDs)
	})

	t.Run("Vehicle in maintenance", func(t *testing.T) {
		svc, db, store := newEngine(t)
		db.PutVehicle(domain.Vehicle{ID: "v1", Plate: plate, Status: domain.VehicleStatusMaintenance})

		_, err := svc.CreateRental(ctx, scenarioA())
		assert.True(t, apperr.IsKind(err, apperr.KindVehicleUnavailable))
		assert.Equal(t, 0, countRentals(t, store))
		assert.Equal(t, domain.VehicleStatusMaintenance, vehicleStatus(t, store, "v1"))
	})

	t.Run("Vehicle already rented", func(t *testing.T) {
		svc, _, store := newEngine(t)
		_, err := svc.CreateRental(ctx, scenarioA())
		require.NoError(t, err)

		_, err = svc.CreateRental(ctx, scenarioA())
		assert.True(t, apperr.IsKind(err, apperr.KindVehicleUnavailable))
		assert.Equal(t, 1, countRentals(t, store))
	})

	t.Run("Client not found", func(t *testing.T) {
		svc, _, _ := newEngine(t)
		in := scenarioA()
		in.ClientID = "52998224725"

		_, err := svc.CreateRental(ctx, in)
		assert.True(t, apperr.IsKind(err, apperr.KindClientNotFound))
	})

	t.Run("Client inactive", func(t *testing.T) {
		svc, db, store := newEngine(t)
		db.PutClient(domain.Client{ID: clientID, Status: domain.ClientStatusBlocked})

		_, err := svc.CreateRental(ctx, scenarioA())
		assert.True(t, apperr.IsKind(err, apperr.KindClientInactive))
		assert.Equal(t, domain.VehicleStatusAvailable, vehicleStatus(t, store, "v1"))
	})

	t.Run("Vehicle not found", func(t *testing.T) {
		svc, _, _ := newEngine(t)
		in := scenarioA()
		in.Plate = "ABC1D23"

		_, err := svc.CreateRental(ctx, in)
		assert.True(t, apperr.IsKind(err, apperr.KindVehicleNotFound))
	})

	t.Run("Client failure takes precedence", func(t *testing.T) {
		svc, _, _ := newEngine(t)
		in := scenarioA()
		in.ClientID = "52998224725"
		in.Plate = "ABC1D23"

		_, err := svc.CreateRental(ctx, in)
		assert.True(t, apperr.IsKind(err, apperr.KindClientNotFound))
	})
}

func TestRentalService_CreateRental_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		modify func(*service.CreateRentalInput)
		field  string
		reason apperr.Reason
	}{
		{"Missing client", func(in *service.CreateRentalInput) { in.ClientID = "" }, "clientId", apperr.ReasonRequired},
		{"Bad CPF", func(in *service.CreateRentalInput) { in.ClientID = "12345678900" }, "clientId", apperr.ReasonInvalidFormat},
		{"Bad plate", func(in *service.CreateRentalInput) { in.Plate = "TS1234" }, "plate", apperr.ReasonInvalidFormat},
		{"Bad start date", func(in *service.CreateRentalInput) { in.StartDate = "31/02/2024" }, "startDate", apperr.ReasonInvalidFormat},
		{"Missing end date", func(in *service.CreateRentalInput) { in.EndDate = "" }, "endDate", apperr.ReasonRequired},
		{"End before start", func(in *service.CreateRentalInput) {
			in.StartDate = "25/12/2024"
			in.EndDate = "20/12/2024"
		}, "endDate", apperr.ReasonInvalidRange},
		{"Same day", func(in *service.CreateRentalInput) { in.EndDate = in.StartDate }, "endDate", apperr.ReasonInvalidRange},
		{"Zero amount", func(in *service.CreateRentalInput) { in.Amount = 0 }, "amount", apperr.ReasonInvalidValue},
		{"Negative amount", func(in *service.CreateRentalInput) { in.Amount = -10 }, "amount", apperr.ReasonInvalidValue},
		{"Blank service id", func(in *service.CreateRentalInput) { in.AdditionalServiceIDs = []string{""} }, "additionalServiceIds[0]", apperr.ReasonRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, store := newEngine(t)
			in := scenarioA()
			tt.modify(&in)

			_, err := svc.CreateRental(ctx, in)
			require.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
			assert.Equal(t, tt.reason, appErr.Reason)
			assert.Equal(t, 0, countRentals(t, store))
			assert.Equal(t, domain.VehicleStatusAvailable, vehicleStatus(t, store, "v1"))
		})
	}
}

func TestRentalService_GetRental(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newEngine(t)

	created, err := svc.CreateRental(ctx, scenarioA())
	require.NoError(t, err)

	first, err := svc.GetRental(ctx, created.ID)
	require.NoError(t, err)
	second, err := svc.GetRental(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, clientID, first.ClientID)
	assert.Equal(t, plate, first.Plate)
	assert.Equal(t, time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), first.StartDate)
	assert.Equal(t, time.Date(2024, 12, 27, 0, 0, 0, 0, time.UTC), first.EndDate)
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(500)))

	_, err = svc.GetRental(ctx, "missing")
	assert.True(t, apperr.IsKind(err, apperr.KindRentalNotFound))

	_, err = svc.GetRental(ctx, "")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func strPtr(s string) *string { return &s }

func TestRentalService_UpdateRental(t *testing.T) {
	ctx := context.Background()

	t.Run("Complete releases vehicle", func(t *testing.T) {
		svc, _, store := newEngine(t)
		rental, err := svc.CreateRental(ctx, scenarioA())
		require.NoError(t, err)

		updated, err := svc.UpdateRental(ctx, rental.ID, service.UpdateRentalInput{Status: strPtr("completed")})
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusCompleted, updated.Status)
		assert.Equal(t, domain.VehicleStatusAvailable, vehicleStatus(t, store, "v1"))
	})

	t.Run("Cancel releases vehicle", func(t *testing.T) {
		svc, _, store := newEngine(t)
		rental, err := svc.CreateRental(ctx, scenarioA())
		require.NoError(t, err)

		_, err = svc.UpdateRental(ctx, rental.ID, service.UpdateRentalInput{Status: strPtr("CANCELED")})
		require.NoError(t, err)
		assert.Equal(t, domain.VehicleStatusAvailable, vehicleStatus(t, store, "v1"))
	})

	t.Run("Terminal rentals reject status changes", func(t *testing.T) {
		svc, _, store := newEngine(t)
		rental, err := svc.CreateRental(ctx, scenarioA())
		require.NoError(t, err)
		_, err = svc.UpdateRental(ctx, rental.ID, service.UpdateRentalInput{Status: strPtr("completed")})
		require.NoError(t, err)

		for _, status := range domain.RentalStatuses {
			_, err := svc.UpdateRental(ctx, rental.ID, service.UpdateRentalInput{Status: strPtr(string(status))})
			assert.True(t, apperr.IsKind(err, apperr.KindInvalidTransition), "status %s", status)
		}

		got, err := svc.GetRental(ctx, rental.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusCompleted, got.Status)
		assert.Equal(t, domain.VehicleStatusAvailable, vehicleStatus(t, store, "v1"))
	})

	t.Run("Active to active is not a transition", func(t *testing.T) {
		svc, _, _ := newEngine(t)
		rental, err := svc.CreateRental(ctx, scenarioA())
		require.NoError(t, err)

		_, err = svc.UpdateRental(ctx, rental.ID, service.UpdateRentalInput{Status: strPtr("active")})
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidTransition))
	})

	t.Run("Fields only", func(t *testing.T) {
		svc, _, store := newEngine(t)
		rental, err := svc.CreateRental(ctx, scenarioA())
		require.NoError(t, err)

		amount := 650.5
		services := []string{"insurance"}
		updated, err := svc.UpdateRental(ctx, rental.ID, service.UpdateRentalInput{
			EndDate:              strPtr("30/12/2024"),
			Amount:               &amount,
			AdditionalServiceIDs: &services,
		})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), updated.EndDate)
		assert.True(t, updated.Amount.Equal(decimal.RequireFromString("650.5")))
		assert.Equal(t, []string{"insurance"}, updated.AdditionalServiceIDs)
		assert.Equal(t, domain.RentalStatusActive, updated.Status)
		assert.Equal(t, domain.VehicleStatusRented, vehicleStatus(t, store, "v1"))
	})

	t.Run("End date before stored start", func(t *testing.T) {
		svc, _, _ := newEngine(t)
		rental, err := svc.CreateRental(ctx, scenarioA())
		require.NoError(t, err)

		_, err = svc.UpdateRental(ctx, rental.ID, service.UpdateRentalInput{EndDate: strPtr("19/12/2024")})
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperr.KindValidation, appErr.Kind)
		assert.Equal(t, "endDate", appErr.Field)
	})

	t.Run("No field provided", func(t *testing.T) {
		svc, _, _ := newEngine(t)
		_, err := svc.UpdateRental(ctx, "any", service.UpdateRentalInput{})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("Invalid values", func(t *testing.T) {
		svc, _, _ := newEngine(t)
		zero := 0.0

		_, err := svc.UpdateRental(ctx, "any", service.UpdateRentalInput{Amount: &zero})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))

		_, err = svc.UpdateRental(ctx, "any", service.UpdateRentalInput{Status: strPtr("paused")})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))

		_, err = svc.UpdateRental(ctx, "any", service.UpdateRentalInput{EndDate: strPtr("soon")})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("Rental not found", func(t *testing.T) {
		svc, _, _ := newEngine(t)
		_, err := svc.UpdateRental(ctx, "missing", service.UpdateRentalInput{Status: strPtr("completed")})
		assert.True(t, apperr.IsKind(err, apperr.KindRentalNotFound))
	})

	t.Run("Vehicle claimed by another active rental stays rented", func(t *testing.T) {
		svc, db, store := newEngine(t)
		now := time.Now().UTC()
		db.PutVehicle(domain.Vehicle{ID: "v1", Plate: plate, Status: domain.VehicleStatusRented})
		for _, id := range []string{"r1", "r2"} {
			db.PutRental(domain.Rental{
				ID: id, ClientID: clientID, VehicleID: "v1", Plate: plate,
				StartDate: now, EndDate: now.AddDate(0, 0, 1), Amount: decimal.NewFromInt(10),
				Status: domain.RentalStatusActive, CreatedAt: now, UpdatedAt: now,
			})
		}

		_, err := svc.UpdateRental(ctx, "r1", service.UpdateRentalInput{Status: strPtr("completed")})
		require.NoError(t, err)
		assert.Equal(t, domain.VehicleStatusRented, vehicleStatus(t, store, "v1"))

		_, err = svc.UpdateRental(ctx, "r2", service.UpdateRentalInput{Status: strPtr("completed")})
		require.NoError(t, err)
		assert.Equal(t, domain.VehicleStatusAvailable, vehicleStatus(t, store, "v1"))
	})

	t.Run("Vehicle moved to maintenance is left alone", func(t *testing.T) {
		svc, db, store := newEngine(t)
		rental, err := svc.CreateRental(ctx, scenarioA())
		require.NoError(t, err)
		db.PutVehicle(domain.Vehicle{ID: "v1", Plate: plate, Status: domain.VehicleStatusMaintenance})

		_, err = svc.UpdateRental(ctx, rental.ID, service.UpdateRentalInput{Status: strPtr("completed")})
		require.NoError(t, err)
		assert.Equal(t, domain.VehicleStatusMaintenance, vehicleStatus(t, store, "v1"))
	})
}

func TestRentalService_DeleteRental(t *testing.T) {
	ctx := context.Background()

	t.Run("Not found", func(t *testing.T) {
		svc, _, _ := newEngine(t)
		err := svc.DeleteRental(ctx, "does-not-exist")
		assert.True(t, apperr.IsKind(err, apperr.KindRentalNotFound))
	})

	t.Run("Active rental releases vehicle", func(t *testing.T) {
		svc, _, store := newEngine(t)
		rental, err := svc.CreateRental(ctx, scenarioA())
		require.NoError(t, err)

		require.NoError(t, svc.DeleteRental(ctx, rental.ID))
		assert.Equal(t, domain.VehicleStatusAvailable, vehicleStatus(t, store, "v1"))
		_, err = svc.GetRental(ctx, rental.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindRentalNotFound))
	})

	t.Run("Completed rental never touches vehicle", func(t *testing.T) {
		svc, db, store := newEngine(t)
		now := time.Now().UTC()
		db.PutVehicle(domain.Vehicle{ID: "v1", Plate: plate, Status: domain.VehicleStatusRented})
		db.PutRental(domain.Rental{ID: "r1", VehicleID: "v1", Plate: plate, Status: domain.RentalStatusCompleted, CreatedAt: now})

		require.NoError(t, svc.DeleteRental(ctx, "r1"))
		assert.Equal(t, domain.VehicleStatusRented, vehicleStatus(t, store, "v1"))
	})

	t.Run("Canceled rental releases a stale rented vehicle", func(t *testing.T) {
		svc, db, store := newEngine(t)
		now := time.Now().UTC()
		db.PutVehicle(domain.Vehicle{ID: "v1", Plate: plate, Status: domain.VehicleStatusRented})
		db.PutRental(domain.Rental{ID: "r1", VehicleID: "v1", Plate: plate, Status: domain.RentalStatusCanceled, CreatedAt: now})

		require.NoError(t, svc.DeleteRental(ctx, "r1"))
		assert.Equal(t, domain.VehicleStatusAvailable, vehicleStatus(t, store, "v1"))
	})

	t.Run("Rental without vehicle", func(t *testing.T) {
		svc, db, _ := newEngine(t)
		db.PutRental(domain.Rental{ID: "r1", Status: domain.RentalStatusActive, CreatedAt: time.Now()})

		assert.NoError(t, svc.DeleteRental(ctx, "r1"))
	})
}

func TestRentalService_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newEngine(t)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		kinds     []apperr.Kind
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateRental(ctx, scenarioA())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			kinds = append(kinds, apperr.KindOf(err))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	for _, kind := range kinds {
		assert.Contains(t, []apperr.Kind{apperr.KindVehicleUnavailable, apperr.KindConcurrentModification}, kind)
	}
	assert.Equal(t, 1, countRentals(t, store))
	assert.Equal(t, domain.VehicleStatusRented, vehicleStatus(t, store, "v1"))
}

func TestRentalService_ListRentals(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newEngine(t)
	for i, p := range []string{"AAA1111", "BBB2222", "CCC3333"} {
		db.PutVehicle(domain.Vehicle{ID: p, Plate: p, Status: domain.VehicleStatusAvailable})
		in := scenarioA()
		in.Plate = p
		in.Amount = float64(100 * (i + 1))
		_, err := svc.CreateRental(ctx, in)
		require.NoError(t, err)
	}

	t.Run("Pages with cursor", func(t *testing.T) {
		first, err := svc.ListRentals(ctx, service.ListRentalsInput{Limit: 2})
		require.NoError(t, err)
		require.Len(t, first.Rentals, 2)
		require.NotEmpty(t, first.NextCursor)

		second, err := svc.ListRentals(ctx, service.ListRentalsInput{Limit: 2, Cursor: first.NextCursor})
		require.NoError(t, err)
		require.Len(t, second.Rentals, 1)
		assert.Empty(t, second.NextCursor)

		seen := map[string]bool{}
		for _, rt := range append(first.Rentals, second.Rentals...) {
			assert.False(t, seen[rt.ID], "duplicate %s", rt.ID)
			seen[rt.ID] = true
		}
		assert.Len(t, seen, 3)
		assert.False(t, first.Rentals[0].CreatedAt.Before(first.Rentals[1].CreatedAt))
	})

	t.Run("Exact page has no cursor", func(t *testing.T) {
		page, err := svc.ListRentals(ctx, service.ListRentalsInput{Limit: 3})
		require.NoError(t, err)
		assert.Len(t, page.Rentals, 3)
		assert.Empty(t, page.NextCursor)
	})

	t.Run("Filters", func(t *testing.T) {
		page, err := svc.ListRentals(ctx, service.ListRentalsInput{Status: "completed"})
		require.NoError(t, err)
		assert.Empty(t, page.Rentals)

		page, err = svc.ListRentals(ctx, service.ListRentalsInput{Status: "active", ClientID: "088.326.614-89"})
		require.NoError(t, err)
		assert.Len(t, page.Rentals, 3)
	})

	t.Run("Invalid input", func(t *testing.T) {
		_, err := svc.ListRentals(ctx, service.ListRentalsInput{Status: "late"})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))

		_, err = svc.ListRentals(ctx, service.ListRentalsInput{Limit: -1})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))

		_, err = svc.ListRentals(ctx, service.ListRentalsInput{Cursor: "%%%"})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))

		_, err = svc.ListRentals(ctx, service.ListRentalsInput{Cursor: base64.RawURLEncoding.EncodeToString([]byte("gone"))})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestRentalService_ListRentals_CursorOutlivesRental(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newEngine(t)
	created := time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		db.PutRental(domain.Rental{
			ID: id, ClientID: clientID, VehicleID: "v1", Plate: plate,
			Amount: decimal.NewFromInt(100), Status: domain.RentalStatusCompleted,
			CreatedAt: created.Add(time.Duration(i) * time.Minute),
		})
	}

	first, err := svc.ListRentals(ctx, service.ListRentalsInput{Limit: 1})
	require.NoError(t, err)
	require.Len(t, first.Rentals, 1)
	assert.Equal(t, "r3", first.Rentals[0].ID)

	require.NoError(t, svc.DeleteRental(ctx, first.Rentals[0].ID))

	next, err := svc.ListRentals(ctx, service.ListRentalsInput{Limit: 1, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Rentals, 1)
	assert.Equal(t, "r2", next.Rentals[0].ID)

	last, err := svc.ListRentals(ctx, service.ListRentalsInput{Limit: 1, Cursor: next.NextCursor})
	require.NoError(t, err)
	require.Len(t, last.Rentals, 1)
	assert.Equal(t, "r1", last.Rentals[0].ID)
	assert.Empty(t, last.NextCursor)
}

// staleVehicles answers plate lookups with an outdated available snapshot.
type staleVehicles struct {
	repository.VehicleRepository
}

func (s staleVehicles) FindByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	v, err := s.VehicleRepository.FindByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}
	v.Status = domain.VehicleStatusAvailable
	return v, nil
}

func TestRentalService_CreateRental_TransactionReadDecides(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB()
	db.PutClient(domain.Client{ID: clientID, Status: domain.ClientStatusActive})
	db.PutVehicle(domain.Vehicle{ID: "v1", Plate: plate, Status: domain.VehicleStatusMaintenance})
	store := memory.NewStore(db)

	stale := *store
	stale.VehicleRepository = staleVehicles{store.VehicleRepository}
	svc := service.NewRentalService(&stale, service.Pagination{})

	_, err := svc.CreateRental(ctx, scenarioA())
	assert.True(t, apperr.IsKind(err, apperr.KindVehicleUnavailable), "got %v", err)
	assert.Zero(t, countRentals(t, store))
	assert.Equal(t, domain.VehicleStatusMaintenance, vehicleStatus(t, store, "v1"))
}

func TestRentalService_History(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newEngine(t)
	created := time.Date(2024, 11, 1, 8, 0, 0, 0, time.UTC)
	put := func(id string, start time.Time, createdAt time.Time) {
		db.PutRental(domain.Rental{
			ID: id, ClientID: clientID, VehicleID: "v1", Plate: plate,
			StartDate: start, EndDate: start.AddDate(0, 0, 2), Amount: decimal.NewFromInt(1),
			Status: domain.RentalStatusCompleted, CreatedAt: createdAt,
		})
	}
	jan := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)
	put("old", jan, created)
	put("newest", feb, created)
	put("tie-later", jan, created.Add(time.Hour))

	t.Run("Client", func(t *testing.T) {
		rentals, err := svc.ClientRentalHistory(ctx, "088.326.614-89")
		require.NoError(t, err)
		require.Len(t, rentals, 3)
		assert.Equal(t, []string{"newest", "tie-later", "old"}, []string{rentals[0].ID, rentals[1].ID, rentals[2].ID})
	})

	t.Run("Vehicle", func(t *testing.T) {
		rentals, err := svc.VehicleRentalHistory(ctx, "tst1234")
		require.NoError(t, err)
		require.Len(t, rentals, 3)
		assert.Equal(t, "newest", rentals[0].ID)
	})

	t.Run("Unknown plate", func(t *testing.T) {
		_, err := svc.VehicleRentalHistory(ctx, "ZZZ9Z99")
		assert.True(t, apperr.IsKind(err, apperr.KindVehicleNotFound))
	})

	t.Run("Invalid ids", func(t *testing.T) {
		_, err := svc.ClientRentalHistory(ctx, "123")
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		_, err = svc.VehicleRentalHistory(ctx, "??")
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}
