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
	portssvc "github.com/atelierhq/atelier_finance_app/internal/core/ports/services"
	"github.com/atelierhq/atelier_finance_app/internal/core/services"
)

type RevaluationServiceTestSuite struct {
	suite.Suite
	mockCurrencyRepo *MockCurrencyRepository
	service          portssvc.RevaluationSvcFacade
	userID           string
}

func (suite *RevaluationServiceTestSuite) SetupTest() {
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.service = services.NewRevaluationService(suite.mockCurrencyRepo, 30*24*time.Hour)
	suite.userID = uuid.NewString()
}

func foreignUSDAccount(balance, originalRate string) domain.ForeignAccount {
	return domain.ForeignAccount{
		AccountID:    uuid.NewString(),
		Name:         "US operating account",
		CurrencyCode: "USD",
		Balance:      decimal.RequireFromString(balance),
		OriginalRate: decimal.RequireFromString(originalRate),
		CurrentRate:  decimal.RequireFromString(originalRate),
	}
}

// --- Convert ---

func (suite *RevaluationServiceTestSuite) TestConvert_AppliesCurrentRate() {
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(usdCurrency("1.35"), nil).Once()

	got, err := suite.service.Convert(context.Background(), decimal.NewFromInt(200), "USD")

	suite.Require().NoError(err)
	assert.True(suite.T(), got.Equal(decimal.NewFromInt(270)))
}

func (suite *RevaluationServiceTestSuite) TestConvert_UnknownCurrency() {
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "JPY").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Convert(context.Background(), decimal.NewFromInt(100), "JPY")

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrUnknownCurrency)
}

func (suite *RevaluationServiceTestSuite) TestConvert_StaleRate() {
	stale := usdCurrency("1.35")
	stale.RateUpdatedAt = time.Now().UTC().Add(-60 * 24 * time.Hour)
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(stale, nil).Once()

	_, err := suite.service.Convert(context.Background(), decimal.NewFromInt(100), "USD")

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrStaleRate)
}

// --- RevalueAccounts ---

func (suite *RevaluationServiceTestSuite) TestRevalueAccounts_GainAttribution() {
	account := foreignUSDAccount("5000", "1.32")
	rates := map[string]decimal.Decimal{"USD": decimal.RequireFromString("1.35")}

	results, aggregate, err := suite.service.RevalueAccounts([]domain.ForeignAccount{account}, rates)

	suite.Require().NoError(err)
	suite.Require().Len(results, 1)
	assert.True(suite.T(), results[0].BaseEquivalent.Equal(decimal.NewFromInt(6750)), "5000 x 1.35")
	assert.True(suite.T(), results[0].UnrealizedGainLoss.Equal(decimal.NewFromInt(150)), "5000 x (1.35 - 1.32)")
	assert.True(suite.T(), aggregate.Equal(decimal.NewFromInt(150)))
	// The original rate is carried through untouched.
	assert.True(suite.T(), results[0].OriginalRate.Equal(decimal.RequireFromString("1.32")))
}

func (suite *RevaluationServiceTestSuite) TestRevalueAccounts_LossAttribution() {
	account := foreignUSDAccount("5000", "1.32")
	rates := map[string]decimal.Decimal{"USD": decimal.RequireFromString("1.30")}

	results, aggregate, err := suite.service.RevalueAccounts([]domain.ForeignAccount{account}, rates)

	suite.Require().NoError(err)
	assert.True(suite.T(), results[0].UnrealizedGainLoss.Equal(decimal.NewFromInt(-100)))
	assert.True(suite.T(), aggregate.Equal(decimal.NewFromInt(-100)))
}

func (suite *RevaluationServiceTestSuite) TestRevalueAccounts_Idempotent() {
	account := foreignUSDAccount("5000", "1.32")
	rates := map[string]decimal.Decimal{"USD": decimal.RequireFromString("1.35")}
	accounts := []domain.ForeignAccount{account}

	first, firstAgg, err := suite.service.RevalueAccounts(accounts, rates)
	suite.Require().NoError(err)
	second, secondAgg, err := suite.service.RevalueAccounts(accounts, rates)
	suite.Require().NoError(err)

	assert.True(suite.T(), first[0].UnrealizedGainLoss.Equal(second[0].UnrealizedGainLoss))
	assert.True(suite.T(), firstAgg.Equal(secondAgg))
}

func (suite *RevaluationServiceTestSuite) TestRevalueAccounts_MissingRate() {
	account := foreignUSDAccount("5000", "1.32")

	_, _, err := suite.service.RevalueAccounts([]domain.ForeignAccount{account}, map[string]decimal.Decimal{})

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrUnknownCurrency)
}

// --- RevalueAll ---

func (suite *RevaluationServiceTestSuite) TestRevalueAll_RecordsAppliedRate() {
	account := foreignUSDAccount("5000", "1.32")

	suite.mockCurrencyRepo.On("ListForeignAccounts", mock.Anything).Return([]domain.ForeignAccount{account}, nil).Once()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(usdCurrency("1.35"), nil).Once()
	suite.mockCurrencyRepo.On("UpdateCurrentRate", mock.Anything, account.AccountID, decimal.RequireFromString("1.35"), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	results, aggregate, err := suite.service.RevalueAll(context.Background(), suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(results, 1)
	assert.True(suite.T(), aggregate.Equal(decimal.NewFromInt(150)))
	suite.mockCurrencyRepo.AssertExpectations(suite.T())
}

func (suite *RevaluationServiceTestSuite) TestRevalueAll_StaleRateAbortsRun() {
	account := foreignUSDAccount("5000", "1.32")
	stale := usdCurrency("1.35")
	stale.RateUpdatedAt = time.Now().UTC().Add(-60 * 24 * time.Hour)

	suite.mockCurrencyRepo.On("ListForeignAccounts", mock.Anything).Return([]domain.ForeignAccount{account}, nil).Once()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(stale, nil).Once()

	_, _, err := suite.service.RevalueAll(context.Background(), suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrStaleRate)
	suite.mockCurrencyRepo.AssertNotCalled(suite.T(), "UpdateCurrentRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- BuildAdjustmentLines ---

func (suite *RevaluationServiceTestSuite) TestBuildAdjustmentLines_Gain() {
	lines, err := suite.service.BuildAdjustmentLines(decimal.NewFromInt(150), "1100", "4500", "5500")

	suite.Require().NoError(err)
	suite.Require().Len(lines, 2)
	assert.Equal(suite.T(), "1100", lines[0].AccountCode)
	assert.True(suite.T(), lines[0].Debit.Equal(decimal.NewFromInt(150)))
	assert.Equal(suite.T(), "4500", lines[1].AccountCode)
	assert.True(suite.T(), lines[1].Credit.Equal(decimal.NewFromInt(150)))
}

func (suite *RevaluationServiceTestSuite) TestBuildAdjustmentLines_Loss() {
	lines, err := suite.service.BuildAdjustmentLines(decimal.NewFromInt(-100), "1100", "4500", "5500")

	suite.Require().NoError(err)
	suite.Require().Len(lines, 2)
	assert.Equal(suite.T(), "5500", lines[0].AccountCode)
	assert.True(suite.T(), lines[0].Debit.Equal(decimal.NewFromInt(100)))
	assert.Equal(suite.T(), "1100", lines[1].AccountCode)
	assert.True(suite.T(), lines[1].Credit.Equal(decimal.NewFromInt(100)))
}

func (suite *RevaluationServiceTestSuite) TestBuildAdjustmentLines_ZeroAggregate() {
	_, err := suite.service.BuildAdjustmentLines(decimal.Zero, "1100", "4500", "5500")

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func TestRevaluationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RevaluationServiceTestSuite))
}
