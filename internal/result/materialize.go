package result

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jiangshenghai57/protolinc-go/internal/engineerr"
)

var timeAxisNames = []string{
	"PERIOD_START_Y", "PERIOD_START_M", "PERIOD_START_D",
	"PERIOD_END_Y", "PERIOD_END_M", "PERIOD_END_D",
	"PERIOD_DAYS",
}

// Headers returns the column names of the materialized matrix, in the
// order Materialize writes them.
func (r *RunResult) Headers() []string {
	hdrs := append([]string(nil), timeAxisNames...)

	for s := 0; s < r.numStates; s++ {
		hdrs = append(hdrs, fmt.Sprintf("PROB_STATE_%d", s))
	}
	for from := 0; from < r.numStates; from++ {
		for to := 0; to < r.numStates; to++ {
			hdrs = append(hdrs, fmt.Sprintf("PROB_MVM_%d_%d", from, to))
		}
	}
	for s := 0; s < r.numStates; s++ {
		hdrs = append(hdrs, fmt.Sprintf("VOL_STATE_%d", s))
	}
	for from := 0; from < r.numStates; from++ {
		for to := 0; to < r.numStates; to++ {
			hdrs = append(hdrs, fmt.Sprintf("VOL_MVM_%d_%d", from, to))
		}
	}
	for p := 0; p < r.numPaymentCols; p++ {
		hdrs = append(hdrs, fmt.Sprintf("STATE_PAYMENT_%d", p))
	}
	return hdrs
}

// Materialize writes the full labeled matrix (rows == time axis length,
// cols == len(Headers())) into out, a pre-allocated row-major buffer of
// rows*cols float64s.
func (r *RunResult) Materialize(out []float64, rows, cols int) error {
	if rows != r.timeAxis.Len() {
		return fmt.Errorf("%w: expected %d rows, got %d", engineerr.ErrDimensionMismatch, r.timeAxis.Len(), rows)
	}
	wantCols := len(r.Headers())
	if cols != wantCols {
		return fmt.Errorf("%w: expected %d columns, got %d", engineerr.ErrDimensionMismatch, wantCols, cols)
	}

	for t := 0; t < rows; t++ {
		start := r.timeAxis.Start(t)
		end := r.timeAxis.End(t)
		base := t * cols
		col := base

		out[col+0] = float64(start.Year)
		out[col+1] = float64(start.Month)
		out[col+2] = float64(start.Day)
		out[col+3] = float64(end.Year)
		out[col+4] = float64(end.Month)
		out[col+5] = float64(end.Day)
		out[col+6] = float64(r.timeAxis.PeriodLength(t))
		col += 7

		for s := 0; s < r.numStates; s++ {
			out[col] = r.StateProb(t, s)
			col++
		}
		for from := 0; from < r.numStates; from++ {
			for to := 0; to < r.numStates; to++ {
				out[col] = r.ProbMovement(t, from, to)
				col++
			}
		}
		for s := 0; s < r.numStates; s++ {
			out[col] = r.StateVol(t, s)
			col++
		}
		for from := 0; from < r.numStates; from++ {
			for to := 0; to < r.numStates; to++ {
				out[col] = r.VolMovement(t, from, to)
				col++
			}
		}
		for p := 0; p < r.numPaymentCols; p++ {
			out[col] = r.StatePayment(t, p)
			col++
		}
	}
	return nil
}

// WriteCSV is the convenience materializer §6 describes: comma-separated,
// first row the headers.
func (r *RunResult) WriteCSV(w io.Writer) error {
	headers := r.Headers()
	rows := r.timeAxis.Len()
	cols := len(headers)

	buf := make([]float64, rows*cols)
	if err := r.Materialize(buf, rows, cols); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	record := make([]string, cols)
	for t := 0; t < rows; t++ {
		for c := 0; c < cols; c++ {
			record[c] = strconv.FormatFloat(buf[t*cols+c], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
