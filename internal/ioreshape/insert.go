package ioreshape

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// paramsPerRow is the number of bind parameters of one long row.
const paramsPerRow = 9

// maxParams is the PostgreSQL limit on bind parameters per statement.
const maxParams = 65535

// longInsertBatchSize caps the configured batch size at the PostgreSQL
// parameter limit.
func longInsertBatchSize(configured int) int {
	limit := maxParams / paramsPerRow
	if configured < 1 || configured > limit {
		return limit
	}
	return configured
}

// wideSelectSQL builds the read query over one wide file. The variable
// columns come from the source configuration, in configured order.
func wideSelectSQL(variables []string) string {
	cols := make([]string, len(variables))
	for i, v := range variables {
		cols[i] = fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf(
		`SELECT pixel_id, year, month, day, %s
		 FROM pixel_values_wide
		 ORDER BY pixel_id, year, month, day`,
		strings.Join(cols, ", "))
}

// insertLongRows loads one batch of long rows with a single
// parameterized INSERT inside the source transaction.
func insertLongRows(ctx context.Context, tx pgx.Tx, rows []longRow) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO pixel_values
		(source, pixel_id, year, month, day,
		 water_year, water_year_month, variable, value)
	VALUES `)

	args := make([]any, 0, len(rows)*paramsPerRow)
	for i, r := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * paramsPerRow
		sb.WriteString(fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5,
			base+6, base+7, base+8, base+9))
		args = append(args,
			r.Source, r.PixelID, r.Year, r.Month, r.Day,
			r.WaterYear, r.WaterYearMonth, r.Variable, r.Value)
	}

	_, err := tx.Exec(ctx, sb.String(), args...)
	return err
}
