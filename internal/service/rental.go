package service

import (
	"context"
	"encoding/base64"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"vehicle-rental-backend/internal/apperr"
	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
	"vehicle-rental-backend/internal/validation"
)

type rentalService struct {
	store *repository.Store
	page  Pagination
	now   func() time.Time
	newID func() string
}

func NewRentalService(store *repository.Store, page Pagination) RentalService {
	if page.DefaultLimit <= 0 {
		page.DefaultLimit = 10
	}
	if page.MaxLimit < page.DefaultLimit {
		page.MaxLimit = 100
	}
	return &rentalService{
		store: store,
		page:  page,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *rentalService) CreateRental(ctx context.Context, in CreateRentalInput) (*domain.Rental, error) {
	const method = "rentalService.CreateRental"
	logger.EnterMethod(method, "plate", in.Plate)

	if err := validation.Struct(in); err != nil {
		return nil, fail(method, err)
	}
	clientID, err := validation.ValidateCPF(in.ClientID)
	if err != nil {
		return nil, fail(method, err)
	}
	plate, err := validation.ValidatePlate(in.Plate)
	if err != nil {
		return nil, fail(method, err)
	}
	start, end, err := validation.ValidateDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, fail(method, err)
	}
	amount, err := validation.ValidatePositiveAmount(in.Amount)
	if err != nil {
		return nil, fail(method, err)
	}

	vehicle, err := s.precheck(ctx, clientID, plate)
	if err != nil {
		return nil, fail(method, err)
	}

	now := s.now()
	rental := &domain.Rental{
		ID:                   s.newID(),
		ClientID:             clientID,
		VehicleID:            vehicle.ID,
		Plate:                plate,
		StartDate:            start,
		EndDate:              end,
		Amount:               amount,
		AdditionalServiceIDs: append([]string{}, in.AdditionalServiceIDs...),
		Status:               domain.RentalStatusActive,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		// The pre-check may be stale; only this read decides availability.
		v, err := tx.GetVehicle(ctx, vehicle.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.VehicleNotFound(plate)
		}
		if err != nil {
			return err
		}
		if v.Status != domain.VehicleStatusAvailable {
			return apperr.VehicleUnavailable(plate)
		}
		busy, err := tx.HasActiveRental(ctx, v.ID, "")
		if err != nil {
			return err
		}
		if busy {
			return apperr.VehicleUnavailable(plate)
		}

		if err := tx.CreateRental(ctx, rental); err != nil {
			return err
		}
		return tx.UpdateVehicleStatus(ctx, v.ID, domain.VehicleStatusRented, now)
	})
	if err != nil {
		return nil, fail(method, classify(err), "rental_id", rental.ID)
	}

	logger.Info("Rental created", "rental_id", rental.ID, "vehicle_id", rental.VehicleID, "client_id", rental.ClientID)
	logger.ExitMethod(method, "rental_id", rental.ID)
	return rental, nil
}

// precheck looks up the client and the vehicle concurrently. Client failures
// take precedence over vehicle failures.
func (s *rentalService) precheck(ctx context.Context, clientID, plate string) (*domain.Vehicle, error) {
	var (
		g          errgroup.Group
		client     *domain.Client
		vehicle    *domain.Vehicle
		clientErr  error
		vehicleErr error
	)
	g.Go(func() error {
		client, clientErr = s.store.ClientRepository.GetByID(ctx, clientID)
		return clientErr
	})
	g.Go(func() error {
		vehicle, vehicleErr = s.store.VehicleRepository.FindByPlate(ctx, plate)
		return vehicleErr
	})
	_ = g.Wait()

	switch {
	case errors.Is(clientErr, repository.ErrNotFound):
		return nil, apperr.ClientNotFound(clientID)
	case clientErr != nil:
		return nil, apperr.Internal(clientErr)
	case client.Status != domain.ClientStatusActive:
		return nil, apperr.ClientInactive(clientID)
	}

	switch {
	case errors.Is(vehicleErr, repository.ErrNotFound):
		return nil, apperr.VehicleNotFound(plate)
	case vehicleErr != nil:
		return nil, apperr.Internal(vehicleErr)
	case vehicle.Status != domain.VehicleStatusAvailable:
		return nil, apperr.VehicleUnavailable(plate)
	}
	return vehicle, nil
}

func (s *rentalService) ListRentals(ctx context.Context, in ListRentalsInput) (*RentalPage, error) {
	const method = "rentalService.ListRentals"
	logger.EnterMethod(method, "limit", in.Limit, "status", in.Status)

	limit := in.Limit
	switch {
	case limit == 0:
		limit = s.page.DefaultLimit
	case limit < 0:
		return nil, fail(method, apperr.Validation(validation.FieldLimit, apperr.ReasonInvalidValue, "limit must be positive"))
	case limit > s.page.MaxLimit:
		limit = s.page.MaxLimit
	}

	var filter domain.RentalFilter
	if in.Status != "" {
		status, err := validation.ValidateStatus(in.Status)
		if err != nil {
			return nil, fail(method, err)
		}
		filter.Status = status
	}
	if in.ClientID != "" {
		clientID, err := validation.ValidateCPF(in.ClientID)
		if err != nil {
			return nil, fail(method, err)
		}
		filter.ClientID = clientID
	}

	var after *domain.RentalCursor
	if in.Cursor != "" {
		cursor, err := decodeCursor(in.Cursor)
		if err != nil {
			return nil, fail(method, err)
		}
		after = cursor
	}

	// One extra record tells whether another page exists.
	rentals, err := s.store.RentalRepository.List(ctx, filter, after, limit+1)
	if err != nil {
		return nil, fail(method, apperr.Internal(err))
	}

	page := &RentalPage{Rentals: rentals}
	if len(rentals) > limit {
		page.Rentals = rentals[:limit]
		page.NextCursor = encodeCursor(&rentals[limit-1])
	}

	logger.ExitMethod(method, "count", len(page.Rentals), "has_more", page.NextCursor != "")
	return page, nil
}

func (s *rentalService) GetRental(ctx context.Context, id string) (*domain.Rental, error) {
	const method = "rentalService.GetRental"
	logger.EnterMethod(method, "rental_id", id)

	if id == "" {
		return nil, fail(method, apperr.Validation(validation.FieldID, apperr.ReasonRequired, "rental id is required"))
	}
	rental, err := s.store.RentalRepository.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fail(method, apperr.RentalNotFound(id))
	}
	if err != nil {
		return nil, fail(method, apperr.Internal(err), "rental_id", id)
	}

	logger.ExitMethod(method, "rental_id", id)
	return rental, nil
}

// rentalPatch is an UpdateRentalInput after format validation.
type rentalPatch struct {
	start, end *time.Time
	amount     *decimal.Decimal
	services   *[]string
	status     *domain.RentalStatus
}

func parsePatch(in UpdateRentalInput) (*rentalPatch, error) {
	if in.Empty() {
		return nil, apperr.Validation("", apperr.ReasonRequired, "no valid field provided")
	}

	p := &rentalPatch{}
	if in.StartDate != nil {
		t, err := validation.ValidateDate(validation.FieldStartDate, *in.StartDate)
		if err != nil {
			return nil, err
		}
		p.start = &t
	}
	if in.EndDate != nil {
		t, err := validation.ValidateDate(validation.FieldEndDate, *in.EndDate)
		if err != nil {
			return nil, err
		}
		p.end = &t
	}
	if p.start != nil && p.end != nil {
		if err := validation.CheckDateOrder(*p.start, *p.end); err != nil {
			return nil, err
		}
	}
	if in.Amount != nil {
		amount, err := validation.ValidatePositiveAmount(*in.Amount)
		if err != nil {
			return nil, err
		}
		p.amount = &amount
	}
	if in.AdditionalServiceIDs != nil {
		ids := append([]string{}, (*in.AdditionalServiceIDs)...)
		p.services = &ids
	}
	if in.Status != nil {
		status, err := validation.ValidateStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		p.status = &status
	}
	return p, nil
}

func (s *rentalService) UpdateRental(ctx context.Context, id string, in UpdateRentalInput) (*domain.Rental, error) {
	const method = "rentalService.UpdateRental"
	logger.EnterMethod(method, "rental_id", id)

	if id == "" {
		return nil, fail(method, apperr.Validation(validation.FieldID, apperr.ReasonRequired, "rental id is required"))
	}
	patch, err := parsePatch(in)
	if err != nil {
		return nil, fail(method, err, "rental_id", id)
	}

	var updated *domain.Rental
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		rental, err := tx.GetRental(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.RentalNotFound(id)
		}
		if err != nil {
			return err
		}

		closing := false
		if patch.status != nil {
			if !domain.AllowedTransition(rental.Status, *patch.status) {
				return apperr.InvalidTransition(string(rental.Status), string(*patch.status))
			}
			closing = (*patch.status).Terminal()
			rental.Status = *patch.status
		}
		if patch.start != nil {
			rental.StartDate = *patch.start
		}
		if patch.end != nil {
			rental.EndDate = *patch.end
		}
		if err := validation.CheckDateOrder(rental.StartDate, rental.EndDate); err != nil {
			return err
		}
		if patch.amount != nil {
			rental.Amount = *patch.amount
		}
		if patch.services != nil {
			rental.AdditionalServiceIDs = *patch.services
		}

		release := false
		if closing && rental.HoldsVehicle() {
			if release, err = canRelease(ctx, tx, rental); err != nil {
				return err
			}
		}

		now := s.now()
		rental.UpdatedAt = now
		if err := tx.UpdateRental(ctx, rental); err != nil {
			return err
		}
		if release {
			if err := tx.UpdateVehicleStatus(ctx, rental.VehicleID, domain.VehicleStatusAvailable, now); err != nil {
				return err
			}
		}
		updated = rental
		return nil
	})
	if err != nil {
		return nil, fail(method, classify(err), "rental_id", id)
	}

	logger.Info("Rental updated", "rental_id", id, "status", updated.Status)
	logger.ExitMethod(method, "rental_id", id)
	return updated, nil
}

func (s *rentalService) DeleteRental(ctx context.Context, id string) error {
	const method = "rentalService.DeleteRental"
	logger.EnterMethod(method, "rental_id", id)

	if id == "" {
		return fail(method, apperr.Validation(validation.FieldID, apperr.ReasonRequired, "rental id is required"))
	}

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		rental, err := tx.GetRental(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.RentalNotFound(id)
		}
		if err != nil {
			return err
		}

		// Completed rentals never release their vehicle on delete.
		release := false
		if (rental.Status == domain.RentalStatusActive || rental.Status == domain.RentalStatusCanceled) && rental.HoldsVehicle() {
			if release, err = canRelease(ctx, tx, rental); err != nil {
				return err
			}
		}

		if err := tx.DeleteRental(ctx, id); err != nil {
			return err
		}
		if release {
			return tx.UpdateVehicleStatus(ctx, rental.VehicleID, domain.VehicleStatusAvailable, s.now())
		}
		return nil
	})
	if err != nil {
		return fail(method, classify(err), "rental_id", id)
	}

	logger.Info("Rental deleted", "rental_id", id)
	logger.ExitMethod(method, "rental_id", id)
	return nil
}

func (s *rentalService) ClientRentalHistory(ctx context.Context, clientID string) ([]domain.Rental, error) {
	const method = "rentalService.ClientRentalHistory"
	logger.EnterMethod(method, "client_id", clientID)

	id, err := validation.ValidateCPF(clientID)
	if err != nil {
		return nil, fail(method, err)
	}
	rentals, err := s.store.RentalRepository.ListByClient(ctx, id)
	if err != nil {
		return nil, fail(method, apperr.Internal(err), "client_id", id)
	}
	sortHistory(rentals)

	logger.ExitMethod(method, "client_id", id, "count", len(rentals))
	return rentals, nil
}

func (s *rentalService) VehicleRentalHistory(ctx context.Context, plate string) ([]domain.Rental, error) {
	const method = "rentalService.VehicleRentalHistory"
	logger.EnterMethod(method, "plate", plate)

	normalized, err := validation.ValidatePlate(plate)
	if err != nil {
		return nil, fail(method, err)
	}
	vehicle, err := s.store.VehicleRepository.FindByPlate(ctx, normalized)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fail(method, apperr.VehicleNotFound(normalized))
	}
	if err != nil {
		return nil, fail(method, apperr.Internal(err), "plate", normalized)
	}
	rentals, err := s.store.RentalRepository.ListByVehicle(ctx, vehicle.ID)
	if err != nil {
		return nil, fail(method, apperr.Internal(err), "vehicle_id", vehicle.ID)
	}
	sortHistory(rentals)

	logger.ExitMethod(method, "vehicle_id", vehicle.ID, "count", len(rentals))
	return rentals, nil
}

// canRelease decides inside tx whether the vehicle held by rental may return
// to available: it must exist, be marked rented and have no other active
// rental. It only reads, so callers invoke it before their first write.
func canRelease(ctx context.Context, tx repository.Tx, rental *domain.Rental) (bool, error) {
	vehicle, err := tx.GetVehicle(ctx, rental.VehicleID)
	if errors.Is(err, repository.ErrNotFound) {
		logger.Warn("Vehicle of rental no longer exists", "rental_id", rental.ID, "vehicle_id", rental.VehicleID)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if vehicle.Status != domain.VehicleStatusRented {
		return false, nil
	}
	busy, err := tx.HasActiveRental(ctx, vehicle.ID, rental.ID)
	if err != nil {
		return false, err
	}
	if busy {
		logger.Warn("Vehicle still claimed by another active rental", "rental_id", rental.ID, "vehicle_id", vehicle.ID)
	}
	return !busy, nil
}

// sortHistory orders by start date descending, then creation time descending.
func sortHistory(rentals []domain.Rental) {
	sort.SliceStable(rentals, func(i, j int) bool {
		if !rentals[i].StartDate.Equal(rentals[j].StartDate) {
			return rentals[i].StartDate.After(rentals[j].StartDate)
		}
		return rentals[i].CreatedAt.After(rentals[j].CreatedAt)
	})
}

// encodeCursor packs the ordering keys of the last rental on a page.
func encodeCursor(rt *domain.Rental) string {
	raw := strconv.FormatInt(rt.CreatedAt.UnixNano(), 10) + ":" + rt.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (*domain.RentalCursor, error) {
	invalid := apperr.Validation(validation.FieldCursor, apperr.ReasonInvalidFormat, "invalid cursor")
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, invalid
	}
	nanos, id, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return nil, invalid
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, invalid
	}
	return &domain.RentalCursor{CreatedAt: time.Unix(0, n).UTC(), ID: id}, nil
}

// classify maps storage errors escaping a transaction onto the error taxonomy.
func classify(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, repository.ErrConflict) {
		return apperr.ConcurrentModification(err)
	}
	return apperr.Internal(err)
}

// fail logs the error returned by method and hands it back.
func fail(method string, err error, args ...any) error {
	if apperr.KindOf(err) == apperr.KindInternal {
		logger.ExitMethodWithError(method, err, args...)
	} else {
		allArgs := append([]any{"method", method, "code", apperr.KindOf(err).Code(), "error", err}, args...)
		logger.Debug("← Method rejected request", allArgs...)
	}
	return err
}
