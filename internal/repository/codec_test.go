package repository

import (
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/okanelab/ledgersheet/internal/domain"
)

func testTransactionCodec(now time.Time) transactionCodec {
	return transactionCodec{log: zerolog.Nop(), now: func() time.Time { return now }}
}

func TestTransactionCodecRoundTrip(t *testing.T) {
	codec := testTransactionCodec(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	original := domain.Transaction{
		ID:                "1735689600000-0",
		ProjectID:         "proj-1",
		TransactionNo:     "TX-100",
		TransactionDate:   time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
		FinancialYear:     2025,
		TransactionType:   domain.TypeExpense,
		DebitAccount:      "消耗品費",
		DebitSubAccount:   "事務用品",
		DebitDepartment:   "開発部",
		DebitPartner:      "文具店",
		DebitTaxCategory:  "課対仕入10%",
		DebitAmount:       1234.5,
		CreditAccount:     "現金",
		CreditTaxCategory: "対象外",
		CreditAmount:      0,
		Description:       "プリンタ用紙",
		FriendlyCategory:  "office-supplies",
		Memo:              "月次購入",
		CategoryKey:       "fixed-costs",
		Label:             "recurring",
		Hash:              "abc123",
		CreatedAt:         time.Date(2025, 4, 16, 9, 30, 0, 0, time.UTC),
		UpdatedAt:         time.Date(2025, 4, 16, 9, 30, 0, 0, time.UTC),
	}

	got := codec.decode(codec.encode(original))
	if !reflect.DeepEqual(got, original) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, original)
	}
}

func TestCellFloat(t *testing.T) {
	tests := []struct {
		name string
		cell interface{}
		want float64
	}{
		{"native float", 1234.5, 1234.5},
		{"native int", 42, 42},
		{"plain string", "99.9", 99.9},
		{"thousands separators", "1,234.50", 1234.5},
		{"blank", "", 0},
		{"nil cell", nil, 0},
		{"garbage", "abc", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cellFloat([]interface{}{tt.cell}, 0); got != tt.want {
				t.Errorf("cellFloat(%v) = %v, want %v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestCellFloatMissingIndex(t *testing.T) {
	if got := cellFloat([]interface{}{"1"}, 5); got != 0 {
		t.Errorf("cellFloat out of range = %v, want 0", got)
	}
}

func TestParseTimeCellFallback(t *testing.T) {
	fallback := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return fallback }
	log := zerolog.Nop()

	tests := []struct {
		name string
		cell string
		want time.Time
	}{
		{"rfc3339", "2025-04-15T00:00:00Z", time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)},
		{"date only", "2025-04-15", time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)},
		{"slash date", "2025/04/15", time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)},
		{"blank", "", fallback},
		{"garbage", "not-a-date", fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimeCell(tt.cell, now, log)
			if !got.Equal(tt.want) {
				t.Errorf("parseTimeCell(%q) = %v, want %v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestProjectCodecRoundTrip(t *testing.T) {
	codec := projectCodec{log: zerolog.Nop(), now: time.Now}

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	original := domain.Project{
		ID:          "1735689600000-42",
		Name:        "社内システム刷新",
		Code:        "PRJ-01",
		Description: "基幹システムの移行",
		Status:      domain.ProjectCompleted,
		StartDate:   &start,
		CreatedAt:   time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC),
	}

	got := codec.decode(codec.encode(original))
	if !reflect.DeepEqual(got, original) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, original)
	}
}

func TestEnumDefaults(t *testing.T) {
	if got := transactionType("bogus"); got != domain.TypeExpense {
		t.Errorf("transactionType(bogus) = %q, want expense", got)
	}
	if got := projectStatus(""); got != domain.ProjectActive {
		t.Errorf("projectStatus(blank) = %q, want active", got)
	}
}
