package analyzer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/itohio/gozeroii/pkg/calibration"
	"github.com/itohio/gozeroii/pkg/reflection"
	"github.com/itohio/gozeroii/pkg/sweep"
)

// Row is one sweep point with its derived quantities.
type Row struct {
	Fq         uint32
	UncalZ     complex64
	UncalGamma complex64
	CalGamma   complex64
	CalZ       complex64
	SWR        float32
	ReturnLoss float32
}

// NewRow derives calibrated values for p using table.
func NewRow(table *calibration.Table, p sweep.Point) Row {
	cal := table.CalibratedGamma(p.Fq, p.UncalZ)
	return Row{
		Fq:         p.Fq,
		UncalZ:     p.UncalZ,
		UncalGamma: reflection.Gamma(p.UncalZ, table.Z0()),
		CalGamma:   cal,
		CalZ:       reflection.Impedance(cal, table.Z0()),
		SWR:        reflection.SWR(cal),
		ReturnLoss: reflection.ReturnLoss(cal),
	}
}

// Report returns a row for every point of the results buffer.
func (c *Context) Report() []Row {
	rows := make([]Row, 0, c.results.Len())
	for i := range c.results.Len() {
		rows = append(rows, NewRow(c.table, c.results.At(i)))
	}
	return rows
}

// MinSWR returns the row with the lowest calibrated SWR. ok is false when
// there are no results.
func (c *Context) MinSWR() (row Row, ok bool) {
	for i := range c.results.Len() {
		r := NewRow(c.table, c.results.At(i))
		if !ok || r.SWR < row.SWR {
			row, ok = r, true
		}
	}
	return row, ok
}

// WriteReport writes rows as an aligned table.
func WriteReport(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FREQUENCY\tUNCAL Z\tUNCAL GAMMA\tCAL GAMMA\tCAL Z\tSWR\tRL dB")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%.2f\n",
			sweep.FormatFrequency(r.Fq),
			formatComplex(r.UncalZ, 2),
			formatComplex(r.UncalGamma, 4),
			formatComplex(r.CalGamma, 4),
			formatComplex(r.CalZ, 2),
			r.SWR,
			r.ReturnLoss,
		)
	}
	return tw.Flush()
}

func formatComplex(c complex64, prec int) string {
	return fmt.Sprintf("%.*f%+.*fj", prec, real(c), prec, imag(c))
}
