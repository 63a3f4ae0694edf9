package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/achledger/internal/domain"
)

// PartyRequest identifies one bank account of a transfer.
type PartyRequest struct {
	RoutingNumber string `json:"routing_number"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	HolderName    string `json:"holder_name"`
}

func (p PartyRequest) toDomain() domain.TransferParty {
	return domain.TransferParty{
		RoutingNumber: strings.TrimSpace(p.RoutingNumber),
		AccountNumber: strings.TrimSpace(p.AccountNumber),
		AccountType:   domain.AccountType(strings.ToLower(strings.TrimSpace(p.AccountType))),
		HolderName:    p.HolderName,
	}
}

// CreateTransferRequest represents a request to submit a transfer.
// Amounts are decimal strings in dollars, dates are YYYY-MM-DD.
type CreateTransferRequest struct {
	EffectiveDate string       `json:"effective_date"`
	Amount        string       `json:"amount"`
	CreditAmount  *string      `json:"credit_amount,omitempty"`
	Debit         PartyRequest `json:"debit"`
	Credit        PartyRequest `json:"credit"`
	Description   string       `json:"description,omitempty"`
}

// ToDomain converts the request. Only syntax is checked here; the ledger
// validates the values.
func (r *CreateTransferRequest) ToDomain() (domain.TransferRequest, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return domain.TransferRequest{}, err
	}

	var creditAmount *decimal.Decimal
	if r.CreditAmount != nil {
		c, err := parseAmount(*r.CreditAmount)
		if err != nil {
			return domain.TransferRequest{}, err
		}
		creditAmount = &c
	}

	req := domain.TransferRequest{
		Amount:       amount,
		CreditAmount: creditAmount,
		Debit:        r.Debit.toDomain(),
		Credit:       r.Credit.toDomain(),
		Description:  r.Description,
	}

	if r.EffectiveDate != "" {
		d, err := domain.ParseDate(r.EffectiveDate)
		if err != nil {
			return domain.TransferRequest{}, err
		}
		req.EffectiveDate = d
	}

	return req, nil
}

// AssembleBatchRequest asks for a batch run through TargetDate.
type AssembleBatchRequest struct {
	TargetDate string `json:"target_date"`
}

// FileFailedRequest records why a file could not be transmitted.
type FileFailedRequest struct {
	Reason string `json:"reason"`
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: invalid amount %q", domain.ErrValidation, s)
	}
	return amount, nil
}
