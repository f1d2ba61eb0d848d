package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/japanese"

	"kabu-pnl/internal/decode"
	apperrors "kabu-pnl/internal/errors"
	"kabu-pnl/internal/models"
)

const header = "約定日,銘柄,銘柄コード,市場,取引,預り,約定数量,約定単価,手数料/諸経費等,税額,受渡日,受渡金額/決済損益"

func sjis(t *testing.T, lines ...string) []byte {
	t.Helper()
	out, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(strings.Join(lines, "\r\n") + "\r\n"))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return out
}

func TestRunAcrossFiles(t *testing.T) {
	// The SELL file is read first; merging re-sorts by date.
	sells := sjis(t, header,
		`2024/02/01,トヨタ自動車,7203,東証,株式現物売,特定,150,"1,300",0,0,2024/02/05,"195,000"`,
	)
	buys := sjis(t, header,
		`2024/01/10,トヨタ自動車,7203,東証,株式現物買,特定,100,"1,000",0,0,2024/01/12,"100,000"`,
		`2024/01/20,トヨタ自動車,7203,東証,株式現物買,特定,100,"1,500",0,0,2024/01/22,"150,000"`,
	)

	report, err := Run(context.Background(), []Source{
		ReaderSource("sells.csv", bytes.NewReader(sells)),
		ReaderSource("buys.csv", bytes.NewReader(buys)),
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Files) != 2 || report.Files[0].Encoding != decode.ShiftJIS || !report.Files[0].HeaderFound {
		t.Errorf("unexpected file reports: %+v", report.Files)
	}
	if len(report.Fills) != 3 || report.Fills[0].TradeDate != "2024-01-10" {
		t.Errorf("fills not merged by date: %+v", report.Fills)
	}
	if len(report.Trades) != 1 {
		t.Fatalf("len(Trades) = %d", len(report.Trades))
	}
	pnl, ok := report.Trades[0].PnL()
	if !ok || !pnl.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("P&L = %s/%v, want 20000", pnl, ok)
	}
	if report.Summary.Calculable != 1 || len(report.BySymbol) != 1 || len(report.Series) != 1 {
		t.Errorf("aggregates not filled: %+v", report.Summary)
	}
}

func TestRunUTF8Input(t *testing.T) {
	// A BOM is invalid Shift_JIS, so UTF-8 decodes with fewer replacements.
	utf8 := "\ufeff" + strings.Join([]string{
		header,
		"2024/01/10,トヨタ自動車,7203,東証,株式現物買,一般,100,1000,0,0,,",
	}, "\n")
	report, err := Run(context.Background(), []Source{ReaderSource("u.csv", strings.NewReader(utf8))}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.Files[0].Encoding != decode.UTF8 {
		t.Errorf("Encoding = %s, want UTF-8", report.Files[0].Encoding)
	}
	if len(report.Fills) != 1 || report.Fills[0].SymbolName != "トヨタ自動車" {
		t.Errorf("unexpected fills: %+v", report.Fills)
	}
}

func TestRunMissingHeaderIsReported(t *testing.T) {
	report, err := Run(context.Background(), []Source{
		ReaderSource("junk.csv", bytes.NewReader(sjis(t, "何もない", "1,2,3"))),
	}, nil)
	if err != nil {
		t.Fatalf("a missing header must not fail the run: %v", err)
	}
	fr := report.Files[0]
	if fr.HeaderFound || len(fr.Errors) != 1 || fr.TotalRows != 0 {
		t.Errorf("unexpected file report %+v", fr)
	}
	if len(report.Fills) != 0 || len(report.Trades) != 0 {
		t.Error("no fills expected")
	}
}

func TestRunWithOpeningPositions(t *testing.T) {
	src := sjis(t, header, "2024/01/20,トヨタ自動車,7203,東証,株式現物売,特定,100,1200,--,--,,")

	report, err := Run(context.Background(), []Source{ReaderSource("a.csv", bytes.NewReader(src))}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.MissingCost) != 1 || report.Summary.Uncalculable != 1 {
		t.Fatalf("expected one shortfall: %+v", report.MissingCost)
	}
	if report.Files[0].UnknownFieldCount != 2 {
		t.Errorf("UnknownFieldCount = %d, want 2", report.Files[0].UnknownFieldCount)
	}

	report.Rematch(context.Background(), []models.OpeningPosition{{
		ID: "x", SymbolCode: "7203", AccountType: "特定",
		Quantity: decimal.NewFromInt(100), AverageCost: decimal.NewFromInt(1000),
	}})
	if len(report.MissingCost) != 0 {
		t.Errorf("shortfall should clear: %+v", report.MissingCost)
	}
	trade := report.Trades[0]
	if pnl, ok := trade.PnL(); !ok || !pnl.Equal(decimal.NewFromInt(20000)) || !trade.FeesEstimated() {
		t.Errorf("trade = %+v", trade)
	}
	if report.Summary.Calculable != 1 {
		t.Errorf("summary not recomputed: %+v", report.Summary)
	}
}

func TestRunFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	if err := os.WriteFile(path, sjis(t, header, "2024/01/10,トヨタ,7203,東証,株式現物買,特定,100,1000,0,0,,"), 0644); err != nil {
		t.Fatal(err)
	}
	report, err := Run(context.Background(), []Source{FileSource(path)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.Files[0].Name != path || len(report.Fills) != 1 {
		t.Errorf("unexpected report %+v", report.Files)
	}
}

func TestRunReadFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.csv")
	_, err := Run(context.Background(), []Source{FileSource(missing)}, nil)
	if !apperrors.Is(err, apperrors.ErrReadFailed) {
		t.Errorf("error = %v, want ErrReadFailed", err)
	}
	var fe *apperrors.FileError
	if !apperrors.As(err, &fe) || fe.Name != missing {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opened := false
	src := Source{Name: "a.csv", Open: func() (io.ReadCloser, error) {
		opened = true
		return io.NopCloser(strings.NewReader(header)), nil
	}}
	_, err := Run(ctx, []Source{src}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if opened {
		t.Error("no source should be opened after cancellation")
	}
}

func TestRunEmpty(t *testing.T) {
	report, err := Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"files":[]`, `"fills":[]`, `"trades":[]`, `"missingCostSymbols":[]`, `"bySymbol":[]`, `"series":[]`} {
		if !bytes.Contains(out, []byte(key)) {
			t.Errorf("json missing %s: %s", key, out)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	src := sjis(t, header,
		"2024/01/10,トヨタ,7203,東証,株式現物買,特定,100,1000,0,0,,",
		"2024/01/10,トヨタ,7203,東証,株式現物売,特定,50,1100,0,0,,",
		"2024/01/11,ソフトバンク,9984,東証,株式現物売,NISA,10,6000,0,0,,",
	)
	run := func() []byte {
		report, err := Run(context.Background(), []Source{ReaderSource("a.csv", bytes.NewReader(src))}, nil)
		if err != nil {
			t.Fatal(err)
		}
		out, err := json.Marshal(report)
		if err != nil {
			t.Fatal(err)
		}
		return out
	}
	if a, b := run(), run(); !bytes.Equal(a, b) {
		t.Errorf("runs differ:\n%s\n%s", a, b)
	}
}
