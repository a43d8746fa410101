package search

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Header is the CSV header of the grid results.
var Header = []string{
	"LogBg",
	"LogQks",
	"LogBks",
	"VarACC",
	"TimeACC",
	"MemACC",
	"Std",
	"Bound",
	"Pass",
}

// ToCSV returns the CSV record of r.
func (r GridResult) ToCSV() []string {
	return []string{
		strconv.Itoa(r.LogBaseG),
		strconv.Itoa(r.LogQKS),
		strconv.Itoa(r.LogBaseKS),
		fmt.Sprintf("%.5e", r.ACC.Var),
		fmt.Sprintf("%.5e", r.ACC.Time),
		fmt.Sprintf("%.5e", r.ACC.Mem),
		fmt.Sprintf("%.5f", r.Std),
		fmt.Sprintf("%.5f", r.Bound),
		strconv.FormatBool(r.Pass),
	}
}

// WriteCSV writes the header followed by one record per result.
func WriteCSV(w io.Writer, bands []Band) error {

	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}

	for _, b := range bands {
		for _, r := range b.Results {
			if err := cw.Write(r.ToCSV()); err != nil {
				return err
			}
		}
		cw.Flush()
	}

	cw.Flush()

	return cw.Error()
}
