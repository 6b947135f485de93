package reconcile

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/okanelab/ledgersheet/internal/domain"
)

// Header names in a Money Forward journal export. Amount columns sometimes
// carry a currency suffix, so headers are matched by prefix after trimming.
const (
	colTransactionNo = "取引No"
	colDate          = "取引日"

	colDebitAccount    = "借方勘定科目"
	colDebitSubAccount = "借方補助科目"
	colDebitDepartment = "借方部門"
	colDebitPartner    = "借方取引先"
	colDebitTax        = "借方税区分"
	colDebitAmount     = "借方金額"

	colCreditAccount    = "貸方勘定科目"
	colCreditSubAccount = "貸方補助科目"
	colCreditDepartment = "貸方部門"
	colCreditPartner    = "貸方取引先"
	colCreditTax        = "貸方税区分"
	colCreditAmount     = "貸方金額"

	colDescription = "摘要"
	colMemo        = "メモ"
	colJournalMemo = "仕訳メモ"
	colTag         = "タグ"
)

var dateLayouts = []string{"2006/01/02", "2006-01-02"}

// ParseJournalCSV parses a decoded journal export into candidate
// transactions. Columns are located by header name, not position. Rows
// without a business key, without a parsable date, or without any amount are
// skipped and counted rather than failing the whole file.
func ParseJournalCSV(text string) (candidates []domain.Transaction, skipped int, err error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("ParseJournalCSV: reading header: %w", err)
	}

	cols := indexColumns(header)
	if _, ok := cols[colTransactionNo]; !ok {
		return nil, 0, fmt.Errorf("ParseJournalCSV: missing required column %q", colTransactionNo)
	}
	if _, ok := cols[colDate]; !ok {
		return nil, 0, fmt.Errorf("ParseJournalCSV: missing required column %q", colDate)
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("ParseJournalCSV: reading record: %w", err)
		}

		t, ok := parseRecord(record, cols)
		if !ok {
			skipped++
			continue
		}
		candidates = append(candidates, t)
	}
	return candidates, skipped, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		for _, name := range []string{
			colTransactionNo, colDate,
			colDebitAccount, colDebitSubAccount, colDebitDepartment, colDebitPartner, colDebitTax, colDebitAmount,
			colCreditAccount, colCreditSubAccount, colCreditDepartment, colCreditPartner, colCreditTax, colCreditAmount,
			colDescription, colJournalMemo, colMemo, colTag,
		} {
			if _, seen := cols[name]; !seen && strings.HasPrefix(h, name) {
				cols[name] = i
				break
			}
		}
	}
	// 仕訳メモ and メモ are the same field under two export variants.
	if _, ok := cols[colMemo]; !ok {
		if i, ok := cols[colJournalMemo]; ok {
			cols[colMemo] = i
		}
	}
	return cols
}

func parseRecord(record []string, cols map[string]int) (domain.Transaction, bool) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	no := field(colTransactionNo)
	if no == "" {
		return domain.Transaction{}, false
	}

	date, ok := parseDate(field(colDate))
	if !ok {
		return domain.Transaction{}, false
	}

	debit := parseAmount(field(colDebitAmount))
	credit := parseAmount(field(colCreditAmount))
	if debit == 0 && credit == 0 {
		return domain.Transaction{}, false
	}

	t := domain.Transaction{
		TransactionNo:     no,
		TransactionDate:   date,
		FinancialYear:     date.Year(),
		TransactionType:   deriveType(debit, credit),
		DebitAccount:      field(colDebitAccount),
		DebitSubAccount:   field(colDebitSubAccount),
		DebitDepartment:   field(colDebitDepartment),
		DebitPartner:      field(colDebitPartner),
		DebitTaxCategory:  field(colDebitTax),
		DebitAmount:       debit,
		CreditAccount:     field(colCreditAccount),
		CreditSubAccount:  field(colCreditSubAccount),
		CreditDepartment:  field(colCreditDepartment),
		CreditPartner:     field(colCreditPartner),
		CreditTaxCategory: field(colCreditTax),
		CreditAmount:      credit,
		Description:       field(colDescription),
		Memo:              field(colMemo),
		Label:             field(colTag),
	}
	t.Hash = Fingerprint(t)
	return t, true
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseAmount(s string) float64 {
	s = strings.NewReplacer(",", "", "¥", "", " ", "").Replace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// deriveType: income carries its amount on the credit side, expense on the
// debit side, and a non-cash journal entry moves value on both.
func deriveType(debit, credit float64) domain.TransactionType {
	switch {
	case debit != 0 && credit != 0:
		return domain.TypeNonCashJournal
	case credit != 0:
		return domain.TypeIncome
	default:
		return domain.TypeExpense
	}
}

// Fingerprint hashes the economically meaningful fields of a candidate. Two
// imports of the same source record produce the same fingerprint, which is
// what duplicate detection keys on.
func Fingerprint(t domain.Transaction) string {
	payload := strings.Join([]string{
		t.TransactionNo,
		t.TransactionDate.Format("2006-01-02"),
		string(t.TransactionType),
		t.DebitAccount,
		strconv.FormatFloat(t.DebitAmount, 'f', -1, 64),
		t.CreditAccount,
		strconv.FormatFloat(t.CreditAmount, 'f', -1, 64),
		t.Description,
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
