package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/okanelab/ledgersheet/internal/domain"
)

// timeLayout is the serialized timestamp format. Encoding truncates to this
// precision, so decode(encode(x)) round-trips at second granularity.
const timeLayout = time.RFC3339

// transactionCodec maps between the 26-column Transactions row layout
// (columns A-Z) and domain.Transaction.
//
// Decoding is deliberately fail-open: blank or unparsable numbers become 0,
// blank or unparsable dates become the current time. Sheets get hand-edited;
// a corrupt cell must not take down every read. Malformed dates are logged so
// the corruption is at least observable.
type transactionCodec struct {
	log zerolog.Logger
	now func() time.Time
}

func (c transactionCodec) decode(row []interface{}) domain.Transaction {
	return domain.Transaction{
		ID:                cellString(row, 0),
		ProjectID:         cellString(row, 1),
		TransactionNo:     cellString(row, 2),
		TransactionDate:   c.cellTime(row, 3),
		FinancialYear:     cellInt(row, 4),
		TransactionType:   transactionType(cellString(row, 5)),
		DebitAccount:      cellString(row, 6),
		DebitSubAccount:   cellString(row, 7),
		DebitDepartment:   cellString(row, 8),
		DebitPartner:      cellString(row, 9),
		DebitTaxCategory:  cellString(row, 10),
		DebitAmount:       cellFloat(row, 11),
		CreditAccount:     cellString(row, 12),
		CreditSubAccount:  cellString(row, 13),
		CreditDepartment:  cellString(row, 14),
		CreditPartner:     cellString(row, 15),
		CreditTaxCategory: cellString(row, 16),
		CreditAmount:      cellFloat(row, 17),
		Description:       cellString(row, 18),
		FriendlyCategory:  cellString(row, 19),
		Memo:              cellString(row, 20),
		CategoryKey:       cellString(row, 21),
		Label:             cellString(row, 22),
		Hash:              cellString(row, 23),
		CreatedAt:         c.cellTime(row, 24),
		UpdatedAt:         c.cellTime(row, 25),
	}
}

func (c transactionCodec) encode(t domain.Transaction) []interface{} {
	return []interface{}{
		t.ID,
		t.ProjectID,
		t.TransactionNo,
		encodeTime(t.TransactionDate),
		t.FinancialYear,
		string(t.TransactionType),
		t.DebitAccount,
		t.DebitSubAccount,
		t.DebitDepartment,
		t.DebitPartner,
		t.DebitTaxCategory,
		t.DebitAmount,
		t.CreditAccount,
		t.CreditSubAccount,
		t.CreditDepartment,
		t.CreditPartner,
		t.CreditTaxCategory,
		t.CreditAmount,
		t.Description,
		t.FriendlyCategory,
		t.Memo,
		t.CategoryKey,
		t.Label,
		t.Hash,
		encodeTime(t.CreatedAt),
		encodeTime(t.UpdatedAt),
	}
}

// projectCodec maps between the 9-column Projects row layout (columns A-I)
// and domain.Project.
type projectCodec struct {
	log zerolog.Logger
	now func() time.Time
}

func (c projectCodec) decode(row []interface{}) domain.Project {
	return domain.Project{
		ID:          cellString(row, 0),
		Name:        cellString(row, 1),
		Code:        cellString(row, 2),
		Description: cellString(row, 3),
		Status:      projectStatus(cellString(row, 4)),
		StartDate:   c.cellOptionalTime(row, 5),
		EndDate:     c.cellOptionalTime(row, 6),
		CreatedAt:   c.cellTime(row, 7),
		UpdatedAt:   c.cellTime(row, 8),
	}
}

func (c projectCodec) encode(p domain.Project) []interface{} {
	return []interface{}{
		p.ID,
		p.Name,
		p.Code,
		p.Description,
		string(p.Status),
		encodeOptionalTime(p.StartDate),
		encodeOptionalTime(p.EndDate),
		encodeTime(p.CreatedAt),
		encodeTime(p.UpdatedAt),
	}
}

func transactionType(s string) domain.TransactionType {
	switch domain.TransactionType(s) {
	case domain.TypeIncome, domain.TypeExpense, domain.TypeNonCashJournal:
		return domain.TransactionType(s)
	default:
		return domain.TypeExpense
	}
}

func projectStatus(s string) domain.ProjectStatus {
	switch domain.ProjectStatus(s) {
	case domain.ProjectActive, domain.ProjectCompleted, domain.ProjectArchived:
		return domain.ProjectStatus(s)
	default:
		return domain.ProjectActive
	}
}

func cellString(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// cellFloat parses a numeric cell, stripping thousands separators first.
// Blank or unparsable text yields 0, never an error.
func cellFloat(row []interface{}, i int) float64 {
	if i < len(row) {
		switch v := row[i].(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	s := strings.ReplaceAll(cellString(row, i), ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func cellInt(row []interface{}, i int) int {
	return int(cellFloat(row, i))
}

// cellTime parses a timestamp cell, falling back to the current time for
// blank or unparsable values.
func (c transactionCodec) cellTime(row []interface{}, i int) time.Time {
	return parseTimeCell(cellString(row, i), c.now, c.log)
}

func (c projectCodec) cellTime(row []interface{}, i int) time.Time {
	return parseTimeCell(cellString(row, i), c.now, c.log)
}

func (c projectCodec) cellOptionalTime(row []interface{}, i int) *time.Time {
	s := cellString(row, i)
	if s == "" {
		return nil
	}
	t := parseTimeCell(s, c.now, c.log)
	return &t
}

func parseTimeCell(s string, now func() time.Time, log zerolog.Logger) time.Time {
	if s == "" {
		return now()
	}
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	log.Warn().Str("cell", s).Msg("unparsable date cell, substituting current time")
	return now()
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func encodeOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return encodeTime(*t)
}
