package domain

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
	ClientStatusBlocked  ClientStatus = "blocked"
)

// Client is keyed by its normalized CPF.
type Client struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	BirthDate string       `json:"birthDate"`
	Status    ClientStatus `json:"status"`
}
