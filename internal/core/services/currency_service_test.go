package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/atelierhq/atelier_finance_app/internal/apperrors"
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	portsrepo "github.com/atelierhq/atelier_finance_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/atelier_finance_app/internal/core/ports/services"
	"github.com/atelierhq/atelier_finance_app/internal/core/services"
	"github.com/atelierhq/atelier_finance_app/internal/dto"
)

// --- Mock CurrencyRepository ---
type MockCurrencyRepository struct {
	mock.Mock
}

var _ portsrepo.CurrencyRepositoryFacade = (*MockCurrencyRepository)(nil)

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListRatePoints(ctx context.Context, code string, since time.Time) ([]domain.RatePoint, error) {
	args := m.Called(ctx, code, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePoint), args.Error(1)
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) UpsertRate(ctx context.Context, code string, rate decimal.Decimal, observedAt time.Time) error {
	args := m.Called(ctx, code, rate, observedAt)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindForeignAccountByID(ctx context.Context, accountID string) (*domain.ForeignAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ForeignAccount), args.Error(1)
}

func (m *MockCurrencyRepository) ListForeignAccounts(ctx context.Context) ([]domain.ForeignAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ForeignAccount), args.Error(1)
}

func (m *MockCurrencyRepository) SaveForeignAccount(ctx context.Context, account domain.ForeignAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockCurrencyRepository) UpdateCurrentRate(ctx context.Context, accountID string, rate decimal.Decimal, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, accountID, rate, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Test Suite Setup ---
type CurrencyServiceTestSuite struct {
	suite.Suite
	mockCurrencyRepo *MockCurrencyRepository
	service          portssvc.CurrencySvcFacade
	userID           string
}

func (suite *CurrencyServiceTestSuite) SetupTest() {
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.service = services.NewCurrencyService(suite.mockCurrencyRepo, "CAD")
	suite.userID = uuid.NewString()
}

func usdCurrency(rate string) *domain.Currency {
	return &domain.Currency{
		CurrencyCode:  "USD",
		Name:          "US Dollar",
		Rate:          decimal.RequireFromString(rate),
		RateUpdatedAt: time.Now().UTC(),
	}
}

// --- CreateCurrency ---

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_NormalizesCode() {
	req := dto.CreateCurrencyRequest{
		CurrencyCode: " usd ",
		Name:         "US Dollar",
		Rate:         decimal.RequireFromString("1.32"),
	}

	suite.mockCurrencyRepo.On("SaveCurrency", mock.Anything, mock.AnythingOfType("domain.Currency")).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(context.Background(), req, suite.userID)

	suite.Require().NoError(err)
	assert.Equal(suite.T(), "USD", currency.CurrencyCode)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_NonPositiveRate() {
	req := dto.CreateCurrencyRequest{
		CurrencyCode: "USD",
		Name:         "US Dollar",
		Rate:         decimal.Zero,
	}

	_, err := suite.service.CreateCurrency(context.Background(), req, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_BadCodeLength() {
	req := dto.CreateCurrencyRequest{
		CurrencyCode: "US",
		Name:         "Not a code",
		Rate:         decimal.NewFromInt(1),
	}

	_, err := suite.service.CreateCurrency(context.Background(), req, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

// --- RecordRate ---

func (suite *CurrencyServiceTestSuite) TestRecordRate_AppendsHistory() {
	rate := decimal.RequireFromString("1.35")
	updated := usdCurrency("1.35")

	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(usdCurrency("1.32"), nil).Once()
	suite.mockCurrencyRepo.On("UpsertRate", mock.Anything, "USD", rate, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(updated, nil).Once()

	currency, err := suite.service.RecordRate(context.Background(), "usd", dto.UpsertRateRequest{Rate: rate}, suite.userID)

	suite.Require().NoError(err)
	assert.True(suite.T(), currency.Rate.Equal(rate))
	suite.mockCurrencyRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestRecordRate_UnknownCurrency() {
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "JPY").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.RecordRate(context.Background(), "JPY", dto.UpsertRateRequest{Rate: decimal.NewFromInt(1)}, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
	suite.mockCurrencyRepo.AssertNotCalled(suite.T(), "UpsertRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- GetRateTrend ---

func (suite *CurrencyServiceTestSuite) TestGetRateTrend_Statistics() {
	since := time.Now().UTC().AddDate(0, -12, 0)
	points := []domain.RatePoint{
		{CurrencyCode: "USD", Rate: decimal.RequireFromString("1.30")},
		{CurrencyCode: "USD", Rate: decimal.RequireFromString("1.43")},
		{CurrencyCode: "USD", Rate: decimal.RequireFromString("1.36")},
	}

	suite.mockCurrencyRepo.On("ListRatePoints", mock.Anything, "USD", since).Return(points, nil).Once()

	trend, err := suite.service.GetRateTrend(context.Background(), "USD", since)

	suite.Require().NoError(err)
	assert.True(suite.T(), trend.Highest.Equal(decimal.RequireFromString("1.43")))
	assert.True(suite.T(), trend.Lowest.Equal(decimal.RequireFromString("1.30")))
	// (1.43 - 1.30) / 1.30 x 100 = 10%
	assert.True(suite.T(), trend.Volatility.Equal(decimal.NewFromInt(10)), "got %s", trend.Volatility)
	assert.Equal(suite.T(), 3, trend.Observations)
}

func (suite *CurrencyServiceTestSuite) TestGetRateTrend_SingleObservation() {
	since := time.Now().UTC().AddDate(0, -1, 0)
	points := []domain.RatePoint{
		{CurrencyCode: "USD", Rate: decimal.RequireFromString("1.30")},
	}

	suite.mockCurrencyRepo.On("ListRatePoints", mock.Anything, "USD", since).Return(points, nil).Once()

	_, err := suite.service.GetRateTrend(context.Background(), "USD", since)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInsufficientData)
}

// --- CreateForeignAccount ---

func (suite *CurrencyServiceTestSuite) TestCreateForeignAccount_CurrentRateStartsAtOriginal() {
	req := dto.CreateForeignAccountRequest{
		Name:         "US operating account",
		CurrencyCode: "USD",
		Balance:      decimal.NewFromInt(5000),
		OriginalRate: decimal.RequireFromString("1.32"),
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(usdCurrency("1.32"), nil).Once()
	suite.mockCurrencyRepo.On("SaveForeignAccount", mock.Anything, mock.AnythingOfType("domain.ForeignAccount")).Return(nil).Once()

	account, err := suite.service.CreateForeignAccount(context.Background(), req, suite.userID)

	suite.Require().NoError(err)
	assert.True(suite.T(), account.CurrentRate.Equal(account.OriginalRate))
}

func (suite *CurrencyServiceTestSuite) TestCreateForeignAccount_BaseCurrencyRejected() {
	req := dto.CreateForeignAccountRequest{
		Name:         "Domestic account",
		CurrencyCode: "CAD",
		Balance:      decimal.NewFromInt(1000),
		OriginalRate: decimal.NewFromInt(1),
	}

	_, err := suite.service.CreateForeignAccount(context.Background(), req, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	suite.mockCurrencyRepo.AssertNotCalled(suite.T(), "SaveForeignAccount", mock.Anything, mock.Anything)
}

func TestCurrencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyServiceTestSuite))
}
