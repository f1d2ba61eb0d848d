// Package positions manages the opening positions a user declares for
// holdings bought before the exported date range.
package positions

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	apperrors "kabu-pnl/internal/errors"
	"kabu-pnl/internal/models"
)

// New validates and creates an opening position with a fresh identity token.
func New(symbolCode, symbolName, accountType string, qty, avgCost decimal.Decimal) (models.OpeningPosition, error) {
	symbolCode = strings.TrimSpace(symbolCode)
	if symbolCode == "" {
		return models.OpeningPosition{}, apperrors.NewValidationError("symbol_code", symbolCode, "must not be empty")
	}
	if !qty.IsPositive() {
		return models.OpeningPosition{}, apperrors.NewValidationError("quantity", qty.String(), "must be greater than zero")
	}
	if !avgCost.IsPositive() {
		return models.OpeningPosition{}, apperrors.NewValidationError("average_cost", avgCost.String(), "must be greater than zero")
	}

	return models.OpeningPosition{
		ID:          uuid.NewString(),
		SymbolCode:  symbolCode,
		SymbolName:  strings.TrimSpace(symbolName),
		Quantity:    qty,
		AverageCost: avgCost,
		AccountType: strings.TrimSpace(accountType),
	}, nil
}

// FromMissingCost prefills a position from a shortfall diagnostic, using
// the unmatched quantity and the given average cost.
func FromMissingCost(diag models.MissingCost, avgCost decimal.Decimal) (models.OpeningPosition, error) {
	return New(diag.SymbolCode, diag.SymbolName, diag.AccountType, diag.Quantity, avgCost)
}

// Book is an ordered list of opening positions. The zero value is empty and
// ready to use. A Book is not safe for concurrent use.
type Book struct {
	items []models.OpeningPosition
}

// NewBook creates a book holding positions in order.
func NewBook(positions ...models.OpeningPosition) *Book {
	b := &Book{}
	b.Replace(positions)
	return b
}

// Add appends a position.
func (b *Book) Add(p models.OpeningPosition) {
	b.items = append(b.items, p)
}

// Replace swaps the whole list.
func (b *Book) Replace(positions []models.OpeningPosition) {
	b.items = append([]models.OpeningPosition(nil), positions...)
}

// Remove deletes the position with the given token.
func (b *Book) Remove(id string) error {
	for i, p := range b.items {
		if p.ID == id {
			b.items = append(b.items[:i:i], b.items[i+1:]...)
			return nil
		}
	}
	return apperrors.Wrapf(apperrors.ErrPositionNotFound, "id %s", id)
}

// List returns a copy of the positions in order.
func (b *Book) List() []models.OpeningPosition {
	return append([]models.OpeningPosition{}, b.items...)
}

// Len returns the number of positions.
func (b *Book) Len() int {
	return len(b.items)
}

// fileEntry is one position as written in a positions file.
type fileEntry struct {
	SymbolCode  string `mapstructure:"symbol_code"`
	SymbolName  string `mapstructure:"symbol_name"`
	AccountType string `mapstructure:"account_type"`
	Quantity    string `mapstructure:"quantity"`
	AverageCost string `mapstructure:"average_cost"`
}

type fileContent struct {
	Positions []fileEntry `mapstructure:"positions"`
}

// Load reads a positions file. The format follows the extension (.toml,
// .yaml, .yml or .json). Every entry gets a fresh token.
func Load(path string) (*Book, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, apperrors.NewFileError(path, apperrors.Wrap(apperrors.ErrReadFailed, err.Error()))
	}

	var content fileContent
	if err := v.Unmarshal(&content); err != nil {
		return nil, apperrors.NewFileError(path, err)
	}

	book := &Book{}
	for i, e := range content.Positions {
		p, err := e.position()
		if err != nil {
			return nil, apperrors.NewFileError(path, fmt.Errorf("positions[%d]: %w", i, err))
		}
		book.Add(p)
	}
	return book, nil
}

func (e fileEntry) position() (models.OpeningPosition, error) {
	qty, err := decimal.NewFromString(strings.TrimSpace(e.Quantity))
	if err != nil {
		return models.OpeningPosition{}, apperrors.NewValidationError("quantity", e.Quantity, "not a number")
	}
	cost, err := decimal.NewFromString(strings.TrimSpace(e.AverageCost))
	if err != nil {
		return models.OpeningPosition{}, apperrors.NewValidationError("average_cost", e.AverageCost, "not a number")
	}
	return New(e.SymbolCode, e.SymbolName, e.AccountType, qty, cost)
}

// Template renders a TOML positions file with one entry per shortfall.
// The average cost is left as zero for the user to fill in.
func Template(diags []models.MissingCost) string {
	var sb strings.Builder
	sb.WriteString("# Opening positions held before the exported period.\n")
	sb.WriteString("# Fill in average_cost for each entry, then pass this file with --positions.\n")
	for _, m := range diags {
		sb.WriteString("\n[[positions]]\n")
		fmt.Fprintf(&sb, "symbol_code = %q\n", m.SymbolCode)
		fmt.Fprintf(&sb, "symbol_name = %q\n", m.SymbolName)
		fmt.Fprintf(&sb, "account_type = %q\n", m.AccountType)
		fmt.Fprintf(&sb, "quantity = %q\n", m.Quantity.String())
		sb.WriteString("average_cost = \"0\"\n")
	}
	return sb.String()
}
