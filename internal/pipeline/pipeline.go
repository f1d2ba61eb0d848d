// Package pipeline runs execution-history files through decoding, parsing,
// FIFO matching and aggregation.
//
// Files are read one after another. Parsing problems are reported per file
// and never stop the run; only read failures and cancellation do.
package pipeline

import (
	"context"
	"io"
	"os"

	"kabu-pnl/internal/decode"
	apperrors "kabu-pnl/internal/errors"
	"kabu-pnl/internal/fifo"
	"kabu-pnl/internal/logging"
	"kabu-pnl/internal/models"
	"kabu-pnl/internal/parser"
	"kabu-pnl/internal/performance"
)

// Source is one input file.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileSource reads the file at path when the pipeline reaches it.
func FileSource(path string) Source {
	return Source{
		Name: path,
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// ReaderSource wraps an already open reader.
func ReaderSource(name string, r io.Reader) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

// FileReport describes how one input was decoded and parsed.
type FileReport struct {
	Name              string   `json:"name"`
	Encoding          string   `json:"encoding"`
	Replacements      int      `json:"replacements"`
	HeaderFound       bool     `json:"headerFound"`
	TotalRows         int      `json:"totalRows"`
	SuccessRows       int      `json:"successRows"`
	FailedRows        int      `json:"failedRows"`
	UnknownFieldCount int      `json:"unknownFieldCount"`
	Errors            []string `json:"errors"`
}

// Report is the full outcome of a run.
type Report struct {
	Files       []FileReport                `json:"files"`
	Fills       []models.NormalizedFill     `json:"fills"`
	Trades      []models.RealizedTrade      `json:"trades"`
	MissingCost []models.MissingCost        `json:"missingCostSymbols"`
	Summary     performance.Summary         `json:"summary"`
	BySymbol    []performance.SymbolSummary `json:"bySymbol"`
	Series      []performance.Point         `json:"series"`
}

// Run processes sources in order and matches the merged fills against the
// opening positions.
func Run(ctx context.Context, sources []Source, positions []models.OpeningPosition) (*Report, error) {
	logger := logging.FromContext(ctx)

	report := &Report{Files: make([]FileReport, 0, len(sources))}
	results := make([]*parser.Result, 0, len(sources))

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := readAll(src)
		if err != nil {
			return nil, apperrors.NewFileError(src.Name, apperrors.Wrap(apperrors.ErrReadFailed, err.Error()))
		}

		fileLogger := logging.WithFile(logger, src.Name)
		fr, res := parseFile(logging.WithLogger(ctx, fileLogger), src.Name, raw)
		logging.LogParseSummary(fileLogger, fr.Encoding, fr.TotalRows, fr.SuccessRows, fr.FailedRows, fr.UnknownFieldCount)

		report.Files = append(report.Files, fr)
		results = append(results, res)
	}

	report.Fills = parser.MergeFills(results...)
	if report.Fills == nil {
		report.Fills = []models.NormalizedFill{}
	}

	report.Rematch(ctx, positions)
	return report, nil
}

// Rematch recomputes trades and aggregates for an existing report after the
// opening positions changed. Files and fills are kept.
func (r *Report) Rematch(ctx context.Context, positions []models.OpeningPosition) {
	matched := fifo.ComputeContext(ctx, r.Fills, positions)
	r.Trades = matched.Trades
	r.MissingCost = matched.MissingCost
	r.Summary = performance.Summarize(r.Trades)
	r.BySymbol = performance.BySymbol(r.Trades)
	r.Series = performance.CumulativeSeries(r.Trades)
}

func readAll(src Source) ([]byte, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func parseFile(ctx context.Context, name string, raw []byte) (FileReport, *parser.Result) {
	decoded := decode.DecodeWithReport(raw)
	if decoded.Fallback {
		logger := logging.FromContext(ctx)
		logger.Warn().Msg("Shift_JIS decoding failed, read as UTF-8")
	}

	res := parser.ParseContext(ctx, decoded.Text)
	return FileReport{
		Name:              name,
		Encoding:          decoded.Encoding,
		Replacements:      decoded.Replacements,
		HeaderFound:       res.HeaderLine > 0,
		TotalRows:         res.TotalRows,
		SuccessRows:       res.SuccessRows,
		FailedRows:        res.FailedRows,
		UnknownFieldCount: res.UnknownFieldCount,
		Errors:            res.Errors,
	}, res
}
