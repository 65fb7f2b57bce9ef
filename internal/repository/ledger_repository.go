package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigworks/billing-service/internal/model"
	"github.com/gigworks/billing-service/internal/money"
	"github.com/gigworks/billing-service/internal/service"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// InTransaction runs fn against a transaction-scoped store. The transaction
// commits when fn returns nil and rolls back otherwise.
func (r *LedgerRepository) InTransaction(ctx context.Context, fn func(tx service.TxStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txStore{db: tx})
	})
}

func (r *LedgerRepository) ProfileByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return scanProfile(r.db.WithContext(ctx).Raw(`
		SELECT id, first_name, last_name, profession, type, balance, created_at
		FROM profiles
		WHERE id = ?
		LIMIT 1
	`, id))
}

func (r *LedgerRepository) ClientProfiles(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, first_name, last_name, profession, type, balance, created_at
		FROM profiles
		WHERE type = 'client'
		ORDER BY last_name ASC, first_name ASC
	`).Scan(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *LedgerRepository) ContractByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	return scanContract(r.db.WithContext(ctx).Raw(`
		SELECT id, terms, status, client_id, contractor_id, created_at
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, id))
}

func (r *LedgerRepository) ContractsForProfile(ctx context.Context, profileID uuid.UUID) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, terms, status, client_id, contractor_id, created_at
		FROM contracts
		WHERE (client_id = ? OR contractor_id = ?)
			AND status <> 'terminated'
		ORDER BY created_at ASC
	`, profileID, profileID).Scan(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *LedgerRepository) UnpaidJobsForClient(ctx context.Context, clientID uuid.UUID) ([]model.Job, error) {
	return r.unpaidJobs(ctx, "c.client_id", clientID)
}

func (r *LedgerRepository) UnpaidJobsForContractor(ctx context.Context, contractorID uuid.UUID) ([]model.Job, error) {
	return r.unpaidJobs(ctx, "c.contractor_id", contractorID)
}

func (r *LedgerRepository) unpaidJobs(ctx context.Context, column string, profileID uuid.UUID) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).Raw(`
		SELECT j.id, j.contract_id, j.description, j.price, j.paid, j.payment_date, j.created_at
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE `+column+` = ?
			AND c.status = 'in_progress'
			AND NOT j.paid
		ORDER BY j.created_at ASC
	`, profileID).Scan(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// txStore serves one ledger transaction. ForUpdate reads take row locks
// that live until the enclosing transaction commits or rolls back.
type txStore struct {
	db *gorm.DB
}

func (t *txStore) JobForUpdate(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	err := t.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, description, price, paid, payment_date, created_at
		FROM jobs
		WHERE id = ?
		LIMIT 1
		FOR UPDATE
	`, id).Scan(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &job, nil
}

func (t *txStore) ContractByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	return scanContract(t.db.WithContext(ctx).Raw(`
		SELECT id, terms, status, client_id, contractor_id, created_at
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, id))
}

func (t *txStore) ProfileForUpdate(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return scanProfile(t.db.WithContext(ctx).Raw(`
		SELECT id, first_name, last_name, profession, type, balance, created_at
		FROM profiles
		WHERE id = ?
		LIMIT 1
		FOR UPDATE
	`, id))
}

func (t *txStore) SetProfileBalance(ctx context.Context, id uuid.UUID, balance money.Amount) error {
	return t.db.WithContext(ctx).Exec(`
		UPDATE profiles
		SET balance = ?
		WHERE id = ?
	`, int64(balance), id).Error
}

func (t *txStore) MarkJobPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	return t.db.WithContext(ctx).Exec(`
		UPDATE jobs
		SET paid = TRUE, payment_date = ?
		WHERE id = ?
	`, paidAt, id).Error
}

// PendingJobTotal sums unpaid job value over all the client's contracts,
// regardless of contract status.
func (t *txStore) PendingJobTotal(ctx context.Context, clientID uuid.UUID) (money.Amount, error) {
	var total int64
	err := t.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(j.price), 0)
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE c.client_id = ?
			AND NOT j.paid
	`, clientID).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return money.Amount(total), nil
}

func scanProfile(query *gorm.DB) (*model.Profile, error) {
	var profile model.Profile
	if err := query.Scan(&profile).Error; err != nil {
		return nil, err
	}
	if profile.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

func scanContract(query *gorm.DB) (*model.Contract, error) {
	var contract model.Contract
	if err := query.Scan(&contract).Error; err != nil {
		return nil, err
	}
	if contract.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}
