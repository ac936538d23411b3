package memory

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/validation"
)

type seedFile struct {
	Clients []struct {
		ID        string `yaml:"id"`
		Name      string `yaml:"name"`
		BirthDate string `yaml:"birth_date"`
		Status    string `yaml:"status"`
	} `yaml:"clients"`
	Vehicles []struct {
		ID      string `yaml:"id"`
		Plate   string `yaml:"plate"`
		Chassis string `yaml:"chassis"`
		Status  string `yaml:"status"`
	} `yaml:"vehicles"`
}

// LoadSeed reads clients and vehicles from a YAML document. Client ids and
// plates are normalized; a vehicle without an id is keyed by its plate.
func (db *DB) LoadSeed(r io.Reader) (clients, vehicles int, err error) {
	var seed seedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && err != io.EOF {
		return 0, 0, fmt.Errorf("failed to parse seed: %w", err)
	}

	for _, c := range seed.Clients {
		id, err := validation.ValidateCPF(c.ID)
		if err != nil {
			return 0, 0, fmt.Errorf("seed client %q: %w", c.ID, err)
		}
		status := domain.ClientStatus(c.Status)
		if status == "" {
			status = domain.ClientStatusActive
		}
		db.PutClient(domain.Client{ID: id, Name: c.Name, BirthDate: c.BirthDate, Status: status})
	}

	for _, v := range seed.Vehicles {
		plate, err := validation.ValidatePlate(v.Plate)
		if err != nil {
			return 0, 0, fmt.Errorf("seed vehicle %q: %w", v.Plate, err)
		}
		id := v.ID
		if id == "" {
			id = plate
		}
		status := domain.VehicleStatus(v.Status)
		if status == "" {
			status = domain.VehicleStatusAvailable
		}
		db.PutVehicle(domain.Vehicle{ID: id, Plate: plate, Chassis: v.Chassis, Status: status})
	}
	return len(seed.Clients), len(seed.Vehicles), nil
}
