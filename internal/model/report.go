package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigworks/billing-service/internal/money"
)

// ProfessionEarnings is one row of the earnings-by-profession aggregate.
type ProfessionEarnings struct {
	Profession  string       `json:"profession"`
	TotalEarned money.Amount `json:"totalEarned"`
}

// ClientSpending is one row of the top-paying-clients aggregate.
type ClientSpending struct {
	ID       uuid.UUID    `json:"id"`
	FullName string       `json:"fullName"`
	Paid     money.Amount `json:"paid"`
}

// EarningsReport combines both aggregates over one period for export.
type EarningsReport struct {
	PeriodStart    time.Time
	PeriodEnd      time.Time
	BestProfession *ProfessionEarnings
	Clients        []ClientSpending
}
