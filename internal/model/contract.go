package model

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

type Contract struct {
	ID           uuid.UUID      `json:"id"`
	Terms        string         `json:"terms"`
	Status       ContractStatus `json:"status"`
	ClientID     uuid.UUID      `json:"clientId"`
	ContractorID uuid.UUID      `json:"contractorId"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// InvolvesProfile reports whether the profile is a party to the contract.
func (c Contract) InvolvesProfile(profileID uuid.UUID) bool {
	return c.ClientID == profileID || c.ContractorID == profileID
}
