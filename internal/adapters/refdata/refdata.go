// Package refdata loads the static reference tables the pipeline joins
// against. Tables are loaded once before any influencer processing begins and
// shared read-only afterwards.
package refdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/persona/internal/domain/education"
	"github.com/okian/persona/internal/domain/interest"
	"github.com/okian/persona/internal/domain/socioclass"
	"github.com/okian/persona/pkg/logger"
	"github.com/okian/persona/pkg/metrics"
)

// Column counts of the supported row formats.
const (
	classColumns       = 5 // city, d_e, c, b, a
	educationColumns   = 4 // city, age_band, gender, avg_years
	translationColumns = 2 // from, to
)

// Loader reads reference tables from flat CSV rows. A header row is detected
// by its non-numeric value columns and skipped. Rows that fail to parse are
// skipped with a warn log; an unreadable or empty table is a load failure,
// which disables the corresponding derivation branch for the whole batch.
type Loader struct {
	log logger.Logger
}

// NewLoader creates a Loader. The global logger must be initialized.
func NewLoader() *Loader {
	return &Loader{log: logger.Get().Named("refdata")}
}

// LoadClassTable reads city -> class-band shares (D/E, C, B, A) rows.
func (l *Loader) LoadClassTable(ctx context.Context, r io.Reader) (socioclass.Table, error) {
	table := make(socioclass.Table)
	err := l.readRows(ctx, r, "class_mix", classColumns, []int{1, 2, 3, 4}, func(fields []string) error {
		shares := [4]float64{}
		for i := range shares {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
			if err != nil {
				return err
			}
			if v < 0 {
				return fmt.Errorf("negative share %v", v)
			}
			shares[i] = v
		}
		table[fields[0]] = socioclass.Shares{DE: shares[0], C: shares[1], B: shares[2], A: shares[3]}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: class_mix: no usable rows", ErrReferenceLoad)
	}
	return table, nil
}

// LoadEducationTable reads (city, age band, gender) -> average years rows.
func (l *Loader) LoadEducationTable(ctx context.Context, r io.Reader) (education.Table, error) {
	table := make(education.Table)
	err := l.readRows(ctx, r, "education", educationColumns, []int{3}, func(fields []string) error {
		years, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
		if err != nil {
			return err
		}
		gender := strings.ToLower(strings.TrimSpace(fields[2]))
		if gender != education.Male && gender != education.Female {
			return fmt.Errorf("unknown gender %q", fields[2])
		}
		table[education.Key{City: fields[0], Band: strings.TrimSpace(fields[1]), Gender: gender}] = years
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: education: no usable rows", ErrReferenceLoad)
	}
	return table, nil
}

// LoadTranslations reads interest-name translation pairs. An empty table is
// fine here: ranking falls back to identity translation.
func (l *Loader) LoadTranslations(ctx context.Context, r io.Reader) (interest.MapTranslator, error) {
	table := make(interest.MapTranslator)
	err := l.readRows(ctx, r, "translations", translationColumns, nil, func(fields []string) error {
		from := strings.TrimSpace(fields[0])
		if from == "" {
			return fmt.Errorf("empty source name")
		}
		table[from] = strings.TrimSpace(fields[1])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// readRows streams CSV rows through parse, skipping a leading header row and
// counting rejects per table. numericCols lists the zero-based columns that
// hold numbers in data rows; a first row where none of them parse is the
// header, while a first row that is merely malformed is rejected like any
// other.
func (l *Loader) readRows(ctx context.Context, r io.Reader, table string, columns int, numericCols []int, parse func(fields []string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	line := 0
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrReferenceLoad, table, err)
		}
		line++

		if len(fields) != columns {
			l.reject(ctx, table, line, fmt.Errorf("expected %d columns, got %d", columns, len(fields)))
			continue
		}
		if err := parse(fields); err != nil {
			if line == 1 && isHeader(fields, numericCols) {
				continue
			}
			l.reject(ctx, table, line, err)
		}
	}
}

// isHeader reports whether fields look like a column-name row: every numeric
// column holds a non-number. Tables without numeric columns cannot be
// distinguished from data this way and report false.
func isHeader(fields []string, numericCols []int) bool {
	if len(numericCols) == 0 {
		return false
	}
	for _, i := range numericCols {
		if _, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64); err == nil {
			return false
		}
	}
	return true
}

func (l *Loader) reject(ctx context.Context, table string, line int, err error) {
	metrics.RecordReferenceRowRejected(table)
	l.log.Warn(ctx, "skipping reference row",
		logger.String("table", table),
		logger.Int("line", line),
		logger.Error(err),
	)
}
