package dto

import (
	"time"

	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest defines one line of a new journal entry.
// Exactly one of debit and credit must be non-zero; both must be non-negative.
type EntryLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// CreateEntryRequest defines the payload for creating a journal entry in DRAFT.
type CreateEntryRequest struct {
	Date        time.Time          `json:"date" binding:"required"`
	Description string             `json:"description" binding:"required"`
	Reference   string             `json:"reference"`
	Source      domain.EntrySource `json:"source"`
	Lines       []EntryLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// VoidEntryRequest optionally links the caller-created reversal entry.
type VoidEntryRequest struct {
	ReversalEntryID *string `json:"reversalEntryID"`
}

// ListEntriesParams holds parameters for listing journal entries.
type ListEntriesParams struct {
	Limit     int                 `form:"limit"`
	NextToken *string             `form:"nextToken"`
	Status    *domain.EntryStatus `form:"status"`
}

// LineResponse defines the data returned for a journal line.
type LineResponse struct {
	LineID      string          `json:"lineID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
	Position    int             `json:"position"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID         string         `json:"entryID"`
	EntryNumber     string         `json:"entryNumber"`
	Date            time.Time      `json:"date"`
	Description     string         `json:"description"`
	Reference       string         `json:"reference,omitempty"`
	Source          string         `json:"source"`
	Status          string         `json:"status"`
	PostedAt        *time.Time     `json:"postedAt,omitempty"`
	VoidedAt        *time.Time     `json:"voidedAt,omitempty"`
	ReversalEntryID *string        `json:"reversalEntryID,omitempty"`
	AttachmentCount int            `json:"attachmentCount"`
	Lines           []LineResponse `json:"lines,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	CreatedBy       string         `json:"createdBy"`
}

// ListEntriesResponse is the paginated entry listing payload.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToLineResponse converts a domain.JournalLine to LineResponse.
func ToLineResponse(line *domain.JournalLine) LineResponse {
	return LineResponse{
		LineID:      line.LineID,
		AccountCode: line.AccountCode,
		Debit:       line.Debit,
		Credit:      line.Credit,
		Description: line.Description,
		Position:    line.Position,
	}
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse.
func ToEntryResponse(entry *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:         entry.EntryID,
		EntryNumber:     entry.EntryNumber,
		Date:            entry.EntryDate,
		Description:     entry.Description,
		Reference:       entry.Reference,
		Source:          string(entry.Source),
		Status:          string(entry.Status),
		PostedAt:        entry.PostedAt,
		VoidedAt:        entry.VoidedAt,
		ReversalEntryID: entry.ReversalEntryID,
		AttachmentCount: entry.AttachmentCount,
		CreatedAt:       entry.CreatedAt,
		CreatedBy:       entry.CreatedBy,
	}
	if len(entry.Lines) > 0 {
		resp.Lines = make([]LineResponse, len(entry.Lines))
		for i := range entry.Lines {
			resp.Lines[i] = ToLineResponse(&entry.Lines[i])
		}
	}
	return resp
}
