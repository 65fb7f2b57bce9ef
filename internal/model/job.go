package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigworks/billing-service/internal/money"
)

type Job struct {
	ID          uuid.UUID    `json:"id"`
	ContractID  uuid.UUID    `json:"contractId"`
	Description string       `json:"description"`
	Price       money.Amount `json:"price"`
	Paid        bool         `json:"paid"`
	PaymentDate *time.Time   `json:"paymentDate,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}
