package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gigworks/billing-service/internal/config"
	"github.com/gigworks/billing-service/internal/model"
	"github.com/gigworks/billing-service/internal/money"
)

// TxStore is the slice of the store visible inside one ledger transaction.
// ForUpdate reads hold a row lock until the transaction ends.
type TxStore interface {
	JobForUpdate(ctx context.Context, id uuid.UUID) (*model.Job, error)
	ContractByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	ProfileForUpdate(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	SetProfileBalance(ctx context.Context, id uuid.UUID, balance money.Amount) error
	MarkJobPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error
	PendingJobTotal(ctx context.Context, clientID uuid.UUID) (money.Amount, error)
}

type LedgerStore interface {
	InTransaction(ctx context.Context, fn func(tx TxStore) error) error

	ProfileByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	ClientProfiles(ctx context.Context) ([]model.Profile, error)
	ContractByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	ContractsForProfile(ctx context.Context, profileID uuid.UUID) ([]model.Contract, error)
	UnpaidJobsForClient(ctx context.Context, clientID uuid.UUID) ([]model.Job, error)
	UnpaidJobsForContractor(ctx context.Context, contractorID uuid.UUID) ([]model.Job, error)
}

type LedgerService struct {
	store      LedgerStore
	limitRatio decimal.Decimal
	now        func() time.Time
}

func NewLedgerService(store LedgerStore, cfg *config.Config) *LedgerService {
	return &LedgerService{
		store:      store,
		limitRatio: cfg.Ledger.DepositLimitRatio,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// PayJob moves a job's price from the acting client to the contractor and
// marks the job paid, all inside one transaction. Lock order is job, then
// client, then contractor; profile types are disjoint, so every payer
// acquires locks in the same order.
func (s *LedgerService) PayJob(ctx context.Context, acting model.Profile, jobID uuid.UUID) error {
	if !acting.IsClient() {
		return fmt.Errorf("%w: only clients can pay for jobs", ErrPermissionDenied)
	}

	return s.store.InTransaction(ctx, func(tx TxStore) error {
		job, err := tx.JobForUpdate(ctx, jobID)
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: job %s", ErrNotFound, jobID)
		}
		if err != nil {
			return err
		}
		if job.Paid {
			return fmt.Errorf("%w: job %s", ErrJobAlreadyPaid, job.ID)
		}

		contract, err := tx.ContractByID(ctx, job.ContractID)
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: contract %s referenced by job %s is missing", ErrIntegrity, job.ContractID, job.ID)
		}
		if err != nil {
			return err
		}

		client, err := tx.ProfileForUpdate(ctx, acting.ID)
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: acting profile %s is missing", ErrIntegrity, acting.ID)
		}
		if err != nil {
			return err
		}
		if client.Balance < job.Price {
			return fmt.Errorf("%w: balance %s, price %s", ErrInsufficientFunds, client.Balance, job.Price)
		}

		contractor, err := tx.ProfileForUpdate(ctx, contract.ContractorID)
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: contractor %s referenced by contract %s is missing", ErrIntegrity, contract.ContractorID, contract.ID)
		}
		if err != nil {
			return err
		}

		if err := tx.SetProfileBalance(ctx, client.ID, client.Balance-job.Price); err != nil {
			return err
		}
		if err := tx.SetProfileBalance(ctx, contractor.ID, contractor.Balance+job.Price); err != nil {
			return err
		}
		return tx.MarkJobPaid(ctx, job.ID, s.now())
	})
}

// Deposit adds funds to the acting client's balance, capped at
// limitRatio times the client's pending unpaid job value. A client with
// nothing pending cannot deposit at all.
func (s *LedgerService) Deposit(ctx context.Context, acting model.Profile, amount money.Amount) error {
	if !acting.IsClient() {
		return fmt.Errorf("%w: only clients can deposit", ErrPermissionDenied)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: deposit must be positive", ErrInvalidAmount)
	}

	return s.store.InTransaction(ctx, func(tx TxStore) error {
		client, err := tx.ProfileForUpdate(ctx, acting.ID)
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: acting profile %s is missing", ErrIntegrity, acting.ID)
		}
		if err != nil {
			return err
		}

		pending, err := tx.PendingJobTotal(ctx, client.ID)
		if err != nil {
			return err
		}

		limit := s.limitRatio.Mul(pending.Decimal())
		if !amount.Decimal().LessThan(limit) {
			return fmt.Errorf("%w: deposit %s, pending %s, limit %s",
				ErrDepositLimitExceeded, amount, pending, limit.StringFixed(2))
		}

		return tx.SetProfileBalance(ctx, client.ID, client.Balance+amount)
	})
}

func (s *LedgerService) ProfileByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	profile, err := s.store.ProfileByID(ctx, id)
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *LedgerService) ClientProfiles(ctx context.Context) ([]model.Profile, error) {
	return s.store.ClientProfiles(ctx)
}

// ContractByID returns the contract only when the acting profile is a party
// to it; anything else looks like absence to the caller.
func (s *LedgerService) ContractByID(ctx context.Context, acting model.Profile, id uuid.UUID) (*model.Contract, error) {
	contract, err := s.store.ContractByID(ctx, id)
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: contract %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if !contract.InvolvesProfile(acting.ID) {
		return nil, fmt.Errorf("%w: contract %s", ErrNotFound, id)
	}
	return contract, nil
}

// Contracts lists the acting profile's non-terminated contracts.
func (s *LedgerService) Contracts(ctx context.Context, acting model.Profile) ([]model.Contract, error) {
	return s.store.ContractsForProfile(ctx, acting.ID)
}

// UnpaidJobs lists unpaid jobs under the acting profile's in-progress
// contracts, on whichever side of the contract the profile stands.
func (s *LedgerService) UnpaidJobs(ctx context.Context, acting model.Profile) ([]model.Job, error) {
	if acting.IsClient() {
		return s.store.UnpaidJobsForClient(ctx, acting.ID)
	}
	return s.store.UnpaidJobsForContractor(ctx, acting.ID)
}
