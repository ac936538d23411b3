package firestoredb

import (
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"

	"vehicle-rental-backend/internal/domain"
)

// dateLayout is the on-document format of rental start and end dates.
const dateLayout = "2006-01-02"

type clientDoc struct {
	Name      string `firestore:"name"`
	BirthDate string `firestore:"birthDate"`
	Status    string `firestore:"status"`
}

type vehicleDoc struct {
	Plate     string    `firestore:"plate"`
	Chassis   string    `firestore:"chassis"`
	Status    string    `firestore:"status"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type rentalDoc struct {
	ClientID             string    `firestore:"clientId"`
	VehicleID            string    `firestore:"vehicleId"`
	Plate                string    `firestore:"plate"`
	StartDate            string    `firestore:"startDate"`
	EndDate              string    `firestore:"endDate"`
	Amount               float64   `firestore:"amount"`
	AdditionalServiceIDs []string  `firestore:"additionalServiceIds"`
	Status               string    `firestore:"status"`
	CreatedAt            time.Time `firestore:"createdAt"`
	UpdatedAt            time.Time `firestore:"updatedAt"`
}

func toClient(snap *firestore.DocumentSnapshot) (*domain.Client, error) {
	var doc clientDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return &domain.Client{
		ID:        snap.Ref.ID,
		Name:      doc.Name,
		BirthDate: doc.BirthDate,
		Status:    domain.ClientStatus(doc.Status),
	}, nil
}

func toVehicle(snap *firestore.DocumentSnapshot) (*domain.Vehicle, error) {
	var doc vehicleDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return &domain.Vehicle{
		ID:        snap.Ref.ID,
		Plate:     doc.Plate,
		Chassis:   doc.Chassis,
		Status:    domain.VehicleStatus(doc.Status),
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func toRental(snap *firestore.DocumentSnapshot) (*domain.Rental, error) {
	var doc rentalDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return doc.rental(snap.Ref.ID), nil
}

func newRentalDoc(rt *domain.Rental) rentalDoc {
	ids := rt.AdditionalServiceIDs
	if ids == nil {
		ids = []string{}
	}
	return rentalDoc{
		ClientID:             rt.ClientID,
		VehicleID:            rt.VehicleID,
		Plate:                rt.Plate,
		StartDate:            rt.StartDate.UTC().Format(dateLayout),
		EndDate:              rt.EndDate.UTC().Format(dateLayout),
		Amount:               rt.Amount.InexactFloat64(),
		AdditionalServiceIDs: ids,
		Status:               string(rt.Status),
		CreatedAt:            rt.CreatedAt,
		UpdatedAt:            rt.UpdatedAt,
	}
}

// rental converts a stored document. Unparseable dates decode as the zero time.
func (doc rentalDoc) rental(id string) *domain.Rental {
	start, _ := time.Parse(dateLayout, doc.StartDate)
	end, _ := time.Parse(dateLayout, doc.EndDate)
	return &domain.Rental{
		ID:                   id,
		ClientID:             doc.ClientID,
		VehicleID:            doc.VehicleID,
		Plate:                doc.Plate,
		StartDate:            start,
		EndDate:              end,
		Amount:               decimal.NewFromFloat(doc.Amount).Round(2),
		AdditionalServiceIDs: doc.AdditionalServiceIDs,
		Status:               domain.RentalStatus(doc.Status),
		CreatedAt:            doc.CreatedAt.UTC(),
		UpdatedAt:            doc.UpdatedAt.UTC(),
	}
}

// rentalUpdates lists the mutable rental fields.
func rentalUpdates(rt *domain.Rental) []firestore.Update {
	doc := newRentalDoc(rt)
	return []firestore.Update{
		{Path: "startDate", Value: doc.StartDate},
		{Path: "endDate", Value: doc.EndDate},
		{Path: "amount", Value: doc.Amount},
		{Path: "additionalServiceIds", Value: doc.AdditionalServiceIDs},
		{Path: "status", Value: doc.Status},
		{Path: "updatedAt", Value: doc.UpdatedAt},
	}
}
