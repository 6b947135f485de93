package reconcile

import (
	"strings"
	"testing"
	"time"

	"github.com/okanelab/ledgersheet/internal/domain"
)

const journalHeader = "取引No,取引日,借方勘定科目,借方補助科目,借方部門,借方取引先,借方税区分,借方金額(円),貸方勘定科目,貸方補助科目,貸方部門,貸方取引先,貸方税区分,貸方金額(円),摘要,仕訳メモ,タグ"

func journalCSV(rows ...string) string {
	return journalHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func TestParseJournalCSVFieldMapping(t *testing.T) {
	text := journalCSV(
		`TX-100,2025/04/01,消耗品費,事務用品,開発部,文具店,課対仕入10%,"1,000",現金,,,,対象外,,ペン購入,月次,office`,
	)

	candidates, skipped, err := ParseJournalCSV(text)
	if err != nil {
		t.Fatalf("ParseJournalCSV: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(candidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(candidates))
	}

	got := candidates[0]
	want := domain.Transaction{
		TransactionNo:     "TX-100",
		TransactionDate:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		FinancialYear:     2025,
		TransactionType:   domain.TypeExpense,
		DebitAccount:      "消耗品費",
		DebitSubAccount:   "事務用品",
		DebitDepartment:   "開発部",
		DebitPartner:      "文具店",
		DebitTaxCategory:  "課対仕入10%",
		DebitAmount:       1000,
		CreditAccount:     "現金",
		CreditTaxCategory: "対象外",
		Description:       "ペン購入",
		Memo:              "月次",
		Label:             "office",
	}
	want.Hash = Fingerprint(want)

	if got != want {
		t.Errorf("parsed candidate mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func TestParseJournalCSVTypeDerivation(t *testing.T) {
	text := journalCSV(
		"TX-1,2025/04/01,消耗品費,,,,,1000,現金,,,,,,買い物,,",
		"TX-2,2025/04/02,普通預金,,,,,,売上高,,,,,50000,売上,,",
		"TX-3,2025/04/03,減価償却費,,,,,2000,備品,,,,,2000,月次償却,,",
	)

	candidates, _, err := ParseJournalCSV(text)
	if err != nil {
		t.Fatalf("ParseJournalCSV: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("candidates = %d, want 3", len(candidates))
	}

	wantTypes := []domain.TransactionType{domain.TypeExpense, domain.TypeIncome, domain.TypeNonCashJournal}
	for i, want := range wantTypes {
		if candidates[i].TransactionType != want {
			t.Errorf("%s: type = %q, want %q", candidates[i].TransactionNo, candidates[i].TransactionType, want)
		}
	}
	if candidates[1].Amount() != 50000 {
		t.Errorf("income amount = %v, want 50000 from the credit side", candidates[1].Amount())
	}
}

func TestParseJournalCSVSkipsMalformedRows(t *testing.T) {
	text := journalCSV(
		"TX-1,2025/04/01,消耗品費,,,,,1000,現金,,,,,,good,,",
		",2025/04/02,消耗品費,,,,,1000,現金,,,,,,no key,,",
		"TX-3,not-a-date,消耗品費,,,,,1000,現金,,,,,,bad date,,",
		"TX-4,2025/04/04,消耗品費,,,,,,現金,,,,,,no amounts,,",
	)

	candidates, skipped, err := ParseJournalCSV(text)
	if err != nil {
		t.Fatalf("ParseJournalCSV: %v", err)
	}
	if len(candidates) != 1 || candidates[0].TransactionNo != "TX-1" {
		t.Errorf("candidates = %+v, want only TX-1", candidates)
	}
	if skipped != 3 {
		t.Errorf("skipped = %d, want 3", skipped)
	}
}

func TestParseJournalCSVAmountCleaning(t *testing.T) {
	text := journalCSV(
		`TX-1,2025-04-01,消耗品費,,,,,"¥1,234.5",現金,,,,,,iso date and yen,,`,
	)

	candidates, _, err := ParseJournalCSV(text)
	if err != nil {
		t.Fatalf("ParseJournalCSV: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(candidates))
	}
	if candidates[0].DebitAmount != 1234.5 {
		t.Errorf("DebitAmount = %v, want 1234.5", candidates[0].DebitAmount)
	}
	if want := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC); !candidates[0].TransactionDate.Equal(want) {
		t.Errorf("TransactionDate = %v, want %v", candidates[0].TransactionDate, want)
	}
}

func TestParseJournalCSVMissingRequiredColumn(t *testing.T) {
	if _, _, err := ParseJournalCSV("借方勘定科目,借方金額\nA,100\n"); err == nil {
		t.Error("expected error for export without a 取引No column")
	}
}

func TestParseJournalCSVMemoVariants(t *testing.T) {
	// Some export variants label the memo column メモ instead of 仕訳メモ.
	text := "取引No,取引日,借方勘定科目,借方金額,貸方勘定科目,貸方金額,摘要,メモ\n" +
		"TX-1,2025/04/01,消耗品費,1000,現金,,x,覚え書き\n"

	candidates, _, err := ParseJournalCSV(text)
	if err != nil {
		t.Fatalf("ParseJournalCSV: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Memo != "覚え書き" {
		t.Errorf("Memo = %q, want 覚え書き", candidates[0].Memo)
	}
}

func TestFingerprint(t *testing.T) {
	base := domain.Transaction{
		TransactionNo:   "TX-1",
		TransactionDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		TransactionType: domain.TypeExpense,
		DebitAccount:    "消耗品費",
		DebitAmount:     1000,
		CreditAccount:   "現金",
		Description:     "ペン購入",
	}

	if Fingerprint(base) != Fingerprint(base) {
		t.Error("fingerprint is not deterministic")
	}

	changed := base
	changed.DebitAmount = 1001
	if Fingerprint(changed) == Fingerprint(base) {
		t.Error("amount change did not change the fingerprint")
	}

	// Fields outside the economically meaningful set do not affect it.
	relabeled := base
	relabeled.Memo = "different memo"
	relabeled.Label = "different label"
	if Fingerprint(relabeled) != Fingerprint(base) {
		t.Error("memo and label changed the fingerprint")
	}
}
