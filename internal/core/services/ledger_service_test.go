package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryWithTx = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockLedgerRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockLedgerRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockLedgerRepository) SaveEntry(ctx context.Context, entry *domain.JournalEntry, lines []domain.JournalLine) error {
	args := m.Called(ctx, entry, lines)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockLedgerRepository) ListEntries(ctx context.Context, limit int, nextToken *string, status *domain.EntryStatus) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, limit, nextToken, status)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedToken = &tokenVal
	}
	return args.Get(0).([]domain.JournalEntry), returnedToken, args.Error(2)
}

func (m *MockLedgerRepository) DeleteDraftEntry(ctx context.Context, tx pgx.Tx, entryID string) error {
	args := m.Called(ctx, tx, entryID)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindEntryForUpdate(ctx context.Context, tx pgx.Tx, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindLinesByEntryIDInTx(ctx context.Context, tx pgx.Tx, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, tx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockLedgerRepository) MarkEntryPosted(ctx context.Context, tx pgx.Tx, entryID string, postedBy string, postedAt time.Time) error {
	args := m.Called(ctx, tx, entryID, postedBy, postedAt)
	return args.Error(0)
}

func (m *MockLedgerRepository) MarkEntryVoided(ctx context.Context, tx pgx.Tx, entryID string, voidedBy string, voidedAt time.Time, reversalEntryID *string) error {
	args := m.Called(ctx, tx, entryID, voidedBy, voidedAt, reversalEntryID)
	return args.Error(0)
}

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListActiveAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, account domain.Account, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, account, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// --- Test Suite Setup ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo *MockLedgerRepository
	mockAccountSvc *MockAccountService
	service        portssvc.LedgerSvcFacade
	userID         string
	bankAccount    domain.Account
	revenueAccount domain.Account
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.service = services.NewLedgerService(suite.mockLedgerRepo, suite.mockAccountSvc)

	suite.userID = uuid.NewString()
	suite.bankAccount = domain.Account{
		Code:         "1000",
		Name:         "Bank",
		AccountType:  domain.Asset,
		CurrencyCode: "CAD",
		IsActive:     true,
	}
	suite.revenueAccount = domain.Account{
		Code:         "4000",
		Name:         "Design Revenue",
		AccountType:  domain.Revenue,
		CurrencyCode: "CAD",
		IsActive:     true,
	}
}

func (suite *LedgerServiceTestSuite) balancedRequest(amount decimal.Decimal) dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Description: "Client payment received",
		Lines: []dto.EntryLineRequest{
			{AccountCode: suite.bankAccount.Code, Debit: amount},
			{AccountCode: suite.revenueAccount.Code, Credit: amount},
		},
	}
}

func (suite *LedgerServiceTestSuite) accountsMap() map[string]domain.Account {
	return map[string]domain.Account{
		suite.bankAccount.Code:    suite.bankAccount,
		suite.revenueAccount.Code: suite.revenueAccount,
	}
}

// --- CreateEntry ---

func (suite *LedgerServiceTestSuite) TestCreateEntry_Success() {
	req := suite.balancedRequest(decimal.NewFromInt(1500))

	suite.mockAccountSvc.On("GetAccountsByCodes", mock.Anything, []string{"1000", "4000"}).Return(suite.accountsMap(), nil).Once()
	suite.mockLedgerRepo.On("SaveEntry", mock.Anything, mock.AnythingOfType("*domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine")).
		Run(func(args mock.Arguments) {
			entry := args.Get(1).(*domain.JournalEntry)
			entry.EntryNumber = "JE-2026-000001"
		}).Return(nil).Once()

	entry, err := suite.service.CreateEntry(context.Background(), req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	assert.Equal(suite.T(), domain.Draft, entry.Status)
	assert.Equal(suite.T(), "JE-2026-000001", entry.EntryNumber)
	assert.Equal(suite.T(), domain.SourceManual, entry.Source)
	assert.Len(suite.T(), entry.Lines, 2)
	assert.Equal(suite.T(), 0, entry.Lines[0].Position)
	assert.Equal(suite.T(), 1, entry.Lines[1].Position)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_Unbalanced() {
	req := dto.CreateEntryRequest{
		Date:        time.Now().UTC(),
		Description: "Broken entry",
		Lines: []dto.EntryLineRequest{
			{AccountCode: "1000", Debit: decimal.NewFromInt(100)},
			{AccountCode: "4000", Credit: decimal.NewFromInt(99)},
		},
	}

	entry, err := suite.service.CreateEntry(context.Background(), req, suite.userID)

	suite.Require().Error(err)
	assert.Nil(suite.T(), entry)
	assert.ErrorIs(suite.T(), err, apperrors.ErrUnbalanced)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_ExactDecimalBalance() {
	// 0.1 + 0.2 must equal 0.3 exactly, no float drift.
	req := dto.CreateEntryRequest{
		Date:        time.Now().UTC(),
		Description: "Fractional cents",
		Lines: []dto.EntryLineRequest{
			{AccountCode: "1000", Debit: decimal.RequireFromString("0.1")},
			{AccountCode: "1000", Debit: decimal.RequireFromString("0.2")},
			{AccountCode: "4000", Credit: decimal.RequireFromString("0.3")},
		},
	}

	suite.mockAccountSvc.On("GetAccountsByCodes", mock.Anything, []string{"1000", "4000"}).Return(suite.accountsMap(), nil).Once()
	suite.mockLedgerRepo.On("SaveEntry", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	entry, err := suite.service.CreateEntry(context.Background(), req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_SingleLineRejected() {
	req := dto.CreateEntryRequest{
		Date:        time.Now().UTC(),
		Description: "One sided",
		Lines: []dto.EntryLineRequest{
			{AccountCode: "1000", Debit: decimal.NewFromInt(100)},
		},
	}

	_, err := suite.service.CreateEntry(context.Background(), req, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_BothSidesSetRejected() {
	req := dto.CreateEntryRequest{
		Date:        time.Now().UTC(),
		Description: "Line with debit and credit",
		Lines: []dto.EntryLineRequest{
			{AccountCode: "1000", Debit: decimal.NewFromInt(100), Credit: decimal.NewFromInt(100)},
			{AccountCode: "4000", Credit: decimal.NewFromInt(100)},
		},
	}

	_, err := suite.service.CreateEntry(context.Background(), req, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_UnknownAccount() {
	req := suite.balancedRequest(decimal.NewFromInt(200))

	// Only the bank account exists.
	suite.mockAccountSvc.On("GetAccountsByCodes", mock.Anything, []string{"1000", "4000"}).
		Return(map[string]domain.Account{"1000": suite.bankAccount}, nil).Once()

	_, err := suite.service.CreateEntry(context.Background(), req, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, services.ErrAccountNotFound)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_InactiveAccount() {
	inactive := suite.revenueAccount
	inactive.IsActive = false
	req := suite.balancedRequest(decimal.NewFromInt(200))

	suite.mockAccountSvc.On("GetAccountsByCodes", mock.Anything, []string{"1000", "4000"}).
		Return(map[string]domain.Account{"1000": suite.bankAccount, "4000": inactive}, nil).Once()

	_, err := suite.service.CreateEntry(context.Background(), req, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_UnknownSourceRejected() {
	req := suite.balancedRequest(decimal.NewFromInt(50))
	req.Source = domain.EntrySource("PAYROLL")

	_, err := suite.service.CreateEntry(context.Background(), req, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

// --- PostEntry ---

func (suite *LedgerServiceTestSuite) draftEntry() *domain.JournalEntry {
	entryID := uuid.NewString()
	return &domain.JournalEntry{
		EntryID:     entryID,
		EntryNumber: "JE-2026-000007",
		EntryDate:   time.Now().UTC(),
		Description: "Draft entry",
		Source:      domain.SourceManual,
		Status:      domain.Draft,
	}
}

func (suite *LedgerServiceTestSuite) balancedLines(entryID string) []domain.JournalLine {
	return []domain.JournalLine{
		{LineID: uuid.NewString(), EntryID: entryID, AccountCode: "1000", Debit: decimal.NewFromInt(500), Position: 0},
		{LineID: uuid.NewString(), EntryID: entryID, AccountCode: "4000", Credit: decimal.NewFromInt(500), Position: 1},
	}
}

func (suite *LedgerServiceTestSuite) expectTx() {
	suite.mockLedgerRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockLedgerRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockLedgerRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (suite *LedgerServiceTestSuite) expectTxRollbackOnly() {
	suite.mockLedgerRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockLedgerRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil).Once()
}

func (suite *LedgerServiceTestSuite) TestPostEntry_Success() {
	entry := suite.draftEntry()
	lines := suite.balancedLines(entry.EntryID)

	suite.expectTx()
	suite.mockLedgerRepo.On("FindEntryForUpdate", mock.Anything, mock.Anything, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("FindLinesByEntryIDInTx", mock.Anything, mock.Anything, entry.EntryID).Return(lines, nil).Once()
	suite.mockLedgerRepo.On("MarkEntryPosted", mock.Anything, mock.Anything, entry.EntryID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	posted, err := suite.service.PostEntry(context.Background(), entry.EntryID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(posted)
	assert.Equal(suite.T(), domain.Posted, posted.Status)
	assert.NotNil(suite.T(), posted.PostedAt)
	assert.Equal(suite.T(), suite.userID, posted.PostedBy)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPostEntry_AlreadyPosted() {
	entry := suite.draftEntry()
	entry.Status = domain.Posted

	suite.expectTxRollbackOnly()
	suite.mockLedgerRepo.On("FindEntryForUpdate", mock.Anything, mock.Anything, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.PostEntry(context.Background(), entry.EntryID, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "MarkEntryPosted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_LostLockRace() {
	entryID := uuid.NewString()

	suite.expectTxRollbackOnly()
	suite.mockLedgerRepo.On("FindEntryForUpdate", mock.Anything, mock.Anything, entryID).Return(nil, apperrors.ErrConcurrentModification).Once()

	_, err := suite.service.PostEntry(context.Background(), entryID, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrConcurrentModification)
}

// --- VoidEntry ---

func (suite *LedgerServiceTestSuite) TestVoidEntry_Success() {
	entry := suite.draftEntry()
	entry.Status = domain.Posted

	suite.expectTx()
	suite.mockLedgerRepo.On("FindEntryForUpdate", mock.Anything, mock.Anything, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("MarkEntryVoided", mock.Anything, mock.Anything, entry.EntryID, suite.userID, mock.AnythingOfType("time.Time"), (*string)(nil)).Return(nil).Once()

	voided, err := suite.service.VoidEntry(context.Background(), entry.EntryID, nil, suite.userID)

	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.Voided, voided.Status)
	assert.NotNil(suite.T(), voided.VoidedAt)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestVoidEntry_WithReversalLink() {
	entry := suite.draftEntry()
	entry.Status = domain.Posted
	reversal := suite.draftEntry()

	suite.mockLedgerRepo.On("FindEntryByID", mock.Anything, reversal.EntryID).Return(reversal, nil).Once()
	suite.expectTx()
	suite.mockLedgerRepo.On("FindEntryForUpdate", mock.Anything, mock.Anything, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("MarkEntryVoided", mock.Anything, mock.Anything, entry.EntryID, suite.userID, mock.AnythingOfType("time.Time"), &reversal.EntryID).Return(nil).Once()

	voided, err := suite.service.VoidEntry(context.Background(), entry.EntryID, &reversal.EntryID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(voided.ReversalEntryID)
	assert.Equal(suite.T(), reversal.EntryID, *voided.ReversalEntryID)
}

func (suite *LedgerServiceTestSuite) TestVoidEntry_DraftRejected() {
	entry := suite.draftEntry()

	suite.expectTxRollbackOnly()
	suite.mockLedgerRepo.On("FindEntryForUpdate", mock.Anything, mock.Anything, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.VoidEntry(context.Background(), entry.EntryID, nil, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
}

func (suite *LedgerServiceTestSuite) TestVoidEntry_SelfReversalRejected() {
	entry := suite.draftEntry()
	entry.Status = domain.Posted

	suite.mockLedgerRepo.On("FindEntryByID", mock.Anything, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.VoidEntry(context.Background(), entry.EntryID, &entry.EntryID, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestVoidEntry_VoidedRejected() {
	entry := suite.draftEntry()
	entry.Status = domain.Voided

	suite.expectTxRollbackOnly()
	suite.mockLedgerRepo.On("FindEntryForUpdate", mock.Anything, mock.Anything, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.VoidEntry(context.Background(), entry.EntryID, nil, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
}

// --- DeleteDraftEntry ---

func (suite *LedgerServiceTestSuite) TestDeleteDraftEntry_Success() {
	entry := suite.draftEntry()

	suite.expectTx()
	suite.mockLedgerRepo.On("FindEntryForUpdate", mock.Anything, mock.Anything, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("DeleteDraftEntry", mock.Anything, mock.Anything, entry.EntryID).Return(nil).Once()

	err := suite.service.DeleteDraftEntry(context.Background(), entry.EntryID, suite.userID)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestDeleteDraftEntry_PostedRejected() {
	entry := suite.draftEntry()
	entry.Status = domain.Posted

	suite.expectTxRollbackOnly()
	suite.mockLedgerRepo.On("FindEntryForUpdate", mock.Anything, mock.Anything, entry.EntryID).Return(entry, nil).Once()

	err := suite.service.DeleteDraftEntry(context.Background(), entry.EntryID, suite.userID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "DeleteDraftEntry", mock.Anything, mock.Anything, mock.Anything)
}

// --- GetEntry / ListEntries ---

func (suite *LedgerServiceTestSuite) TestGetEntry_AttachesLines() {
	entry := suite.draftEntry()
	lines := suite.balancedLines(entry.EntryID)

	suite.mockLedgerRepo.On("FindEntryByID", mock.Anything, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("FindLinesByEntryID", mock.Anything, entry.EntryID).Return(lines, nil).Once()

	got, err := suite.service.GetEntry(context.Background(), entry.EntryID)

	suite.Require().NoError(err)
	assert.Len(suite.T(), got.Lines, 2)
}

func (suite *LedgerServiceTestSuite) TestGetEntry_NotFound() {
	entryID := uuid.NewString()
	suite.mockLedgerRepo.On("FindEntryByID", mock.Anything, entryID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetEntry(context.Background(), entryID)

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestListEntries_DefaultLimit() {
	entries := []domain.JournalEntry{*suite.draftEntry()}
	token := "next-page"

	suite.mockLedgerRepo.On("ListEntries", mock.Anything, 20, (*string)(nil), (*domain.EntryStatus)(nil)).Return(entries, token, nil).Once()

	resp, err := suite.service.ListEntries(context.Background(), dto.ListEntriesParams{})

	suite.Require().NoError(err)
	assert.Len(suite.T(), resp.Entries, 1)
	suite.Require().NotNil(resp.NextToken)
	assert.Equal(suite.T(), token, *resp.NextToken)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
