package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gigworks/billing-service/internal/config"
	billinghttp "github.com/gigworks/billing-service/internal/http"
	"github.com/gigworks/billing-service/internal/http/middleware"
	"github.com/gigworks/billing-service/internal/model"
	"github.com/gigworks/billing-service/internal/money"
	"github.com/gigworks/billing-service/internal/service"
)

// memStore is a minimal in-memory service.LedgerStore and
// service.ReportStore for routing tests. The precondition paths exercised
// here fail before any write, so no rollback bookkeeping is needed.
type memStore struct {
	profiles  map[uuid.UUID]model.Profile
	contracts map[uuid.UUID]model.Contract
	jobs      map[uuid.UUID]model.Job
	best      *model.ProfessionEarnings
}

func newMemStore() *memStore {
	return &memStore{
		profiles:  make(map[uuid.UUID]model.Profile),
		contracts: make(map[uuid.UUID]model.Contract),
		jobs:      make(map[uuid.UUID]model.Job),
	}
}

func (s *memStore) InTransaction(_ context.Context, fn func(tx service.TxStore) error) error {
	return fn(s)
}

func (s *memStore) ProfileByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	profile, ok := s.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

func (s *memStore) ClientProfiles(_ context.Context) ([]model.Profile, error) {
	clients := []model.Profile{}
	for _, profile := range s.profiles {
		if profile.IsClient() {
			clients = append(clients, profile)
		}
	}
	return clients, nil
}

func (s *memStore) ContractByID(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	contract, ok := s.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func (s *memStore) ContractsForProfile(_ context.Context, profileID uuid.UUID) ([]model.Contract, error) {
	contracts := []model.Contract{}
	for _, contract := range s.contracts {
		if contract.InvolvesProfile(profileID) && contract.Status != model.ContractStatusTerminated {
			contracts = append(contracts, contract)
		}
	}
	return contracts, nil
}

func (s *memStore) UnpaidJobsForClient(_ context.Context, clientID uuid.UUID) ([]model.Job, error) {
	jobs := []model.Job{}
	for _, job := range s.jobs {
		contract, ok := s.contracts[job.ContractID]
		if ok && !job.Paid && contract.ClientID == clientID && contract.Status == model.ContractStatusInProgress {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (s *memStore) UnpaidJobsForContractor(_ context.Context, contractorID uuid.UUID) ([]model.Job, error) {
	jobs := []model.Job{}
	for _, job := range s.jobs {
		contract, ok := s.contracts[job.ContractID]
		if ok && !job.Paid && contract.ContractorID == contractorID && contract.Status == model.ContractStatusInProgress {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (s *memStore) JobForUpdate(_ context.Context, id uuid.UUID) (*model.Job, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &job, nil
}

func (s *memStore) ProfileForUpdate(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return s.ProfileByID(ctx, id)
}

func (s *memStore) SetProfileBalance(_ context.Context, id uuid.UUID, balance money.Amount) error {
	profile := s.profiles[id]
	profile.Balance = balance
	s.profiles[id] = profile
	return nil
}

func (s *memStore) MarkJobPaid(_ context.Context, id uuid.UUID, paidAt time.Time) error {
	job := s.jobs[id]
	job.Paid = true
	job.PaymentDate = &paidAt
	s.jobs[id] = job
	return nil
}

func (s *memStore) PendingJobTotal(_ context.Context, clientID uuid.UUID) (money.Amount, error) {
	var total money.Amount
	for _, job := range s.jobs {
		contract, ok := s.contracts[job.ContractID]
		if ok && !job.Paid && contract.ClientID == clientID {
			total += job.Price
		}
	}
	return total, nil
}

func (s *memStore) BestProfession(_ context.Context, _, _ time.Time) (*model.ProfessionEarnings, error) {
	if s.best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.best, nil
}

func (s *memStore) TopClients(_ context.Context, _, _ time.Time, _ int) ([]model.ClientSpending, error) {
	return []model.ClientSpending{}, nil
}

type noopGenerator struct{}

func (noopGenerator) Generate(_ model.EarningsReport) ([]byte, error) {
	return []byte("file"), nil
}

func newTestRouter(store *memStore) *gin.Engine {
	cfg := &config.Config{}
	cfg.Ledger.DepositLimitRatio = decimal.New(25, -2)
	cfg.Report.DefaultClientLimit = 2

	ledger := service.NewLedgerService(store, cfg)
	reports := service.NewReportService(store, noopGenerator{}, noopGenerator{}, cfg)
	handler := billinghttp.NewHandler(ledger, reports, zerolog.Nop())
	return billinghttp.NewRouter(handler, middleware.Profile(ledger), "test")
}

func seedPayableJob(store *memStore) (client, contractor model.Profile, job model.Job) {
	client = model.Profile{ID: uuid.New(), FirstName: "Harry", LastName: "Potter", Type: model.ProfileTypeClient, Balance: 10000}
	contractor = model.Profile{ID: uuid.New(), FirstName: "John", LastName: "Lenon", Profession: "musician", Type: model.ProfileTypeContractor}
	contract := model.Contract{ID: uuid.New(), Status: model.ContractStatusInProgress, ClientID: client.ID, ContractorID: contractor.ID}
	job = model.Job{ID: uuid.New(), ContractID: contract.ID, Price: 10000}

	store.profiles[client.ID] = client
	store.profiles[contractor.ID] = contractor
	store.contracts[contract.ID] = contract
	store.jobs[job.ID] = job
	return client, contractor, job
}

func do(router *gin.Engine, method, target, profileID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if profileID != "" {
		req.Header.Set(middleware.HeaderProfileID, profileID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPayJob_HTTPHappyPath(t *testing.T) {
	store := newMemStore()
	client, contractor, job := seedPayableJob(store)
	router := newTestRouter(store)

	rec := do(router, http.MethodPost, "/jobs/"+job.ID.String()+"/pay", client.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, money.Amount(0), store.profiles[client.ID].Balance)
	assert.Equal(t, money.Amount(10000), store.profiles[contractor.ID].Balance)
	assert.True(t, store.jobs[job.ID].Paid)
}

func TestPayJob_HTTPStatusMapping(t *testing.T) {
	store := newMemStore()
	client, contractor, job := seedPayableJob(store)
	router := newTestRouter(store)

	// Missing header.
	rec := do(router, http.MethodPost, "/jobs/"+job.ID.String()+"/pay", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unknown profile.
	rec = do(router, http.MethodPost, "/jobs/"+job.ID.String()+"/pay", uuid.NewString(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong actor type.
	rec = do(router, http.MethodPost, "/jobs/"+job.ID.String()+"/pay", contractor.ID.String(), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Unknown job.
	rec = do(router, http.MethodPost, "/jobs/"+uuid.NewString()+"/pay", client.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Insufficient funds.
	poor := model.Profile{ID: uuid.New(), Type: model.ProfileTypeClient, Balance: 1}
	store.profiles[poor.ID] = poor
	rec = do(router, http.MethodPost, "/jobs/"+job.ID.String()+"/pay", poor.ID.String(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Paying twice.
	rec = do(router, http.MethodPost, "/jobs/"+job.ID.String()+"/pay", client.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(router, http.MethodPost, "/jobs/"+job.ID.String()+"/pay", client.ID.String(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayJob_MissingContractIs500(t *testing.T) {
	store := newMemStore()
	client, _, job := seedPayableJob(store)
	delete(store.contracts, job.ContractID)
	router := newTestRouter(store)

	rec := do(router, http.MethodPost, "/jobs/"+job.ID.String()+"/pay", client.ID.String(), "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDeposit_HTTP(t *testing.T) {
	store := newMemStore()
	client, _, _ := seedPayableJob(store)
	router := newTestRouter(store)

	// Pending is 100.00, so 24.99 passes and 25.00 does not.
	rec := do(router, http.MethodPost, "/balances/deposit", client.ID.String(), `{"amount": "24.99"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, money.Amount(10000+2499), store.profiles[client.ID].Balance)

	rec = do(router, http.MethodPost, "/balances/deposit", client.ID.String(), `{"amount": 25.00}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/balances/deposit", client.ID.String(), `{"amount": "abc"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/balances/deposit", client.ID.String(), `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnpaidJobs_HTTP(t *testing.T) {
	store := newMemStore()
	client, _, job := seedPayableJob(store)
	router := newTestRouter(store)

	rec := do(router, http.MethodGet, "/jobs/unpaid", client.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var jobs []model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)
}

func TestGetContract_ScopedTo404(t *testing.T) {
	store := newMemStore()
	client, _, job := seedPayableJob(store)
	outsider := model.Profile{ID: uuid.New(), Type: model.ProfileTypeClient}
	store.profiles[outsider.ID] = outsider
	router := newTestRouter(store)

	contractID := store.jobs[job.ID].ContractID
	rec := do(router, http.MethodGet, "/contracts/"+contractID.String(), client.ID.String(), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/contracts/"+contractID.String(), outsider.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListClientProfiles_NoHeaderRequired(t *testing.T) {
	store := newMemStore()
	seedPayableJob(store)
	router := newTestRouter(store)

	rec := do(router, http.MethodGet, "/profiles", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var profiles []model.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profiles))
	assert.Len(t, profiles, 1)
}

func TestBestProfession_HTTP(t *testing.T) {
	store := newMemStore()
	client, _, _ := seedPayableJob(store)
	router := newTestRouter(store)

	rec := do(router, http.MethodGet, "/admin/best-profession?start=2026-08-01&end=2026-08-15", client.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	store.best = &model.ProfessionEarnings{Profession: "musician", TotalEarned: 12100}
	rec = do(router, http.MethodGet, "/admin/best-profession?start=2026-08-01&end=2026-08-15", client.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "musician")

	rec = do(router, http.MethodGet, "/admin/best-profession?start=bogus&end=2026-08-15", client.ID.String(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportReport_HTTP(t *testing.T) {
	store := newMemStore()
	client, _, _ := seedPayableJob(store)
	router := newTestRouter(store)

	body := `{"start": "2026-08-01", "end": "2026-08-15"}`
	rec := do(router, http.MethodPost, "/admin/reports/export", client.ID.String(), body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "earnings-20260801-20260815.xlsx")

	rec = do(router, http.MethodPost, "/admin/reports/export/pdf", client.ID.String(), body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "earnings-20260801-20260815.pdf")
}
