// Package parser turns decoded execution-history text into normalized fills.
//
// Parsing never fails as a whole: rejected rows are counted and described in
// the Result, and a missing header yields an empty Result with one error.
package parser

import (
	"context"
	"fmt"
	"sort"
	"strings"

	apperrors "kabu-pnl/internal/errors"
	"kabu-pnl/internal/logging"
	"kabu-pnl/internal/models"
)

// Column names of the execution-history export.
const (
	ColTradeDate   = "約定日"
	ColSymbolCode  = "銘柄コード"
	ColQuantity    = "約定数量"
	ColPrice       = "約定単価"
	ColSymbolName  = "銘柄"
	ColMarket      = "市場"
	ColSide        = "取引"
	ColAccountType = "預り"
	ColFees        = "手数料/諸経費等"
	ColTax         = "税額"
	ColSettleDate  = "受渡日"
	ColSettleAmt   = "受渡金額/決済損益"
)

// RequiredColumns must all appear in the header line.
var RequiredColumns = []string{ColTradeDate, ColSymbolCode, ColQuantity, ColPrice}

// Row rejection reasons.
const (
	ReasonInsufficientColumns = "insufficient columns"
	ReasonBadDate             = "unparseable date"
	ReasonEmptySymbol         = "empty symbol code"
	ReasonBadQuantity         = "invalid quantity"
	ReasonBadPrice            = "invalid price"
)

// Result is the outcome of parsing one document.
type Result struct {
	// HeaderLine is the 1-based line of the header, or 0 when none was found.
	HeaderLine        int                     `json:"headerLine"`
	Fills             []models.NormalizedFill `json:"fills"`
	TotalRows         int                     `json:"totalRows"`
	SuccessRows       int                     `json:"successRows"`
	FailedRows        int                     `json:"failedRows"`
	UnknownFieldCount int                     `json:"unknownFieldCount"`
	Errors            []string                `json:"errors"`
}

// Parse parses decoded text without logging.
func Parse(text string) *Result {
	return ParseContext(context.Background(), text)
}

// ParseContext parses decoded text, logging rejected rows at debug level
// through the logger carried by ctx.
func ParseContext(ctx context.Context, text string) *Result {
	logger := logging.FromContext(ctx)
	res := &Result{Fills: []models.NormalizedFill{}, Errors: []string{}}

	lines := splitLines(text)
	headerIdx, header := findHeader(lines)
	if headerIdx < 0 {
		err := apperrors.Wrapf(apperrors.ErrHeaderNotFound, "required columns %s", strings.Join(RequiredColumns, ", "))
		res.Errors = append(res.Errors, err.Error())
		logger.Warn().Err(err).Msg("No header row in input")
		return res
	}

	res.HeaderLine = headerIdx + 1
	cols := indexColumns(header)
	for i := headerIdx + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		res.TotalRows++

		fill, unknown, rowErr := parseRow(i+1, SplitLine(lines[i]), header, cols)
		if rowErr != nil {
			res.FailedRows++
			res.Errors = append(res.Errors, rowErr.Error())
			logger.Debug().Int("line", rowErr.Line).Str("reason", rowErr.Reason).Msg("Row rejected")
			continue
		}
		res.SuccessRows++
		res.UnknownFieldCount += unknown
		res.Fills = append(res.Fills, fill)
	}

	SortFills(res.Fills)
	return res
}

// findHeader returns the index and fields of the first line carrying every
// required column, or -1.
func findHeader(lines []string) (int, []string) {
	for i, line := range lines {
		fields := SplitLine(line)
		present := make(map[string]bool, len(fields))
		for _, f := range fields {
			present[f] = true
		}
		ok := true
		for _, req := range RequiredColumns {
			if !present[req] {
				ok = false
				break
			}
		}
		if ok {
			return i, fields
		}
	}
	return -1, nil
}

// indexColumns maps column names to positions. The first occurrence wins.
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func parseRow(line int, fields, header []string, cols map[string]int) (models.NormalizedFill, int, *apperrors.RowError) {
	if len(fields) < len(header) {
		return models.NormalizedFill{}, 0, apperrors.NewRowError(line, ReasonInsufficientColumns,
			fmt.Sprintf("%d < %d", len(fields), len(header)))
	}

	get := func(name string) string {
		if idx, ok := cols[name]; ok {
			return fields[idx]
		}
		return ""
	}

	rawDate := get(ColTradeDate)
	date, ok := ParseDate(rawDate)
	if !ok {
		return models.NormalizedFill{}, 0, apperrors.NewRowError(line, ReasonBadDate, rawDate)
	}

	code := get(ColSymbolCode)
	if code == "" {
		return models.NormalizedFill{}, 0, apperrors.NewRowError(line, ReasonEmptySymbol, code)
	}

	rawQty := get(ColQuantity)
	qty := ParseNumber(rawQty)
	if qty == nil || !qty.IsPositive() {
		return models.NormalizedFill{}, 0, apperrors.NewRowError(line, ReasonBadQuantity, rawQty)
	}

	rawPrice := get(ColPrice)
	price := ParseNumber(rawPrice)
	if price == nil || price.IsNegative() {
		return models.NormalizedFill{}, 0, apperrors.NewRowError(line, ReasonBadPrice, rawPrice)
	}

	unknown := 0
	fees := models.AmountFromPtr(ParseNumber(get(ColFees)))
	if !fees.IsKnown() {
		unknown++
	}
	tax := models.AmountFromPtr(ParseNumber(get(ColTax)))
	if !tax.IsKnown() {
		unknown++
	}

	raw := make(map[string]string, len(header))
	for i, name := range header {
		raw[name] = fields[i]
	}

	return models.NormalizedFill{
		TradeDate:   date,
		SymbolCode:  code,
		SymbolName:  get(ColSymbolName),
		Side:        ParseSide(get(ColSide)),
		Quantity:    *qty,
		Price:       *price,
		Fees:        fees,
		Tax:         tax,
		AccountType: get(ColAccountType),
		Raw:         raw,
		Line:        line,
	}, unknown, nil
}

// SortFills stable-sorts fills ascending by trade date. Fills on the same
// date keep their relative order.
func SortFills(fills []models.NormalizedFill) {
	sort.SliceStable(fills, func(i, j int) bool {
		return fills[i].TradeDate < fills[j].TradeDate
	})
}

// MergeFills concatenates the fills of several results and re-sorts them by
// date. Same-date fills from different files stay in file order.
func MergeFills(results ...*Result) []models.NormalizedFill {
	var merged []models.NormalizedFill
	for _, r := range results {
		if r == nil {
			continue
		}
		merged = append(merged, r.Fills...)
	}
	SortFills(merged)
	return merged
}
