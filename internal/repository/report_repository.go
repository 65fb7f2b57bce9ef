package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigworks/billing-service/internal/model"
	"github.com/gigworks/billing-service/internal/money"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// BestProfession returns the top-earning contractor profession over paid
// jobs whose payment date falls in [start, end).
func (r *ReportRepository) BestProfession(ctx context.Context, start, end time.Time) (*model.ProfessionEarnings, error) {
	var row struct {
		Profession  string
		TotalEarned int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.profession, SUM(j.price) AS total_earned
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE j.paid
			AND j.payment_date >= ?
			AND j.payment_date < ?
		GROUP BY p.profession
		ORDER BY total_earned DESC
		LIMIT 1
	`, start, end).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.Profession == "" && row.TotalEarned == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.ProfessionEarnings{
		Profession:  row.Profession,
		TotalEarned: money.Amount(row.TotalEarned),
	}, nil
}

// TopClients returns the clients that paid the most in [start, end),
// highest spender first.
func (r *ReportRepository) TopClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientSpending, error) {
	var rows []struct {
		ID        uuid.UUID
		FirstName string
		LastName  string
		Paid      int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.id, p.first_name, p.last_name, SUM(j.price) AS paid
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid
			AND j.payment_date >= ?
			AND j.payment_date < ?
		GROUP BY p.id, p.first_name, p.last_name
		ORDER BY paid DESC
		LIMIT ?
	`, start, end, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	clients := make([]model.ClientSpending, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, model.ClientSpending{
			ID:       row.ID,
			FullName: row.FirstName + " " + row.LastName,
			Paid:     money.Amount(row.Paid),
		})
	}
	return clients, nil
}
