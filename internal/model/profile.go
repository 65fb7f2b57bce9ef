package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigworks/billing-service/internal/money"
)

type ProfileType string

const (
	ProfileTypeClient     ProfileType = "client"
	ProfileTypeContractor ProfileType = "contractor"
)

type Profile struct {
	ID         uuid.UUID    `json:"id"`
	FirstName  string       `json:"firstName"`
	LastName   string       `json:"lastName"`
	Profession string       `json:"profession"`
	Type       ProfileType  `json:"type"`
	Balance    money.Amount `json:"balance"`
	CreatedAt  time.Time    `json:"createdAt"`
}

func (p Profile) IsClient() bool {
	return p.Type == ProfileTypeClient
}

func (p Profile) IsContractor() bool {
	return p.Type == ProfileTypeContractor
}

func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}
