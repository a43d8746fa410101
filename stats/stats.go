package stats

import (
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"
)

var Header = []string{
	"COUNT",
	"MIN",
	"AVG",
	"MED",
	"STD",
	"P95",
	"MAX",
}

// BoundStats is a struct storing statistics about the log2 of a set of noise bounds
type BoundStats struct {
	Count  int
	Min    float64
	Mean   float64
	Median float64
	Std    float64
	P95    float64
	Max    float64

	logs []float64
}

func NewBoundStats() (b *BoundStats) {
	return &BoundStats{
		logs: []float64{},
	}
}

// Update records the log2 of each bound.
func (b *BoundStats) Update(bounds ...float64) {
	for _, v := range bounds {
		b.logs = append(b.logs, math.Log2(v))
	}
}

// Finalize computes the statistics of the recorded bounds. It returns an
// error if no bound was recorded.
func (b *BoundStats) Finalize() (err error) {

	data := mstats.Float64Data(b.logs)

	b.Count = data.Len()

	if b.Min, err = data.Min(); err != nil {
		return
	}

	if b.Max, err = data.Max(); err != nil {
		return
	}

	if b.Mean, err = data.Mean(); err != nil {
		return
	}

	if b.Median, err = data.Median(); err != nil {
		return
	}

	if b.Std, err = data.StandardDeviation(); err != nil {
		return
	}

	b.P95, err = data.Percentile(95)

	return
}

func (b *BoundStats) ToCSV() []string {
	return []string{
		fmt.Sprintf("%d", b.Count),
		fmt.Sprintf("%.5f", b.Min),
		fmt.Sprintf("%.5f", b.Mean),
		fmt.Sprintf("%.5f", b.Median),
		fmt.Sprintf("%.5f", b.Std),
		fmt.Sprintf("%.5f", b.P95),
		fmt.Sprintf("%.5f", b.Max),
	}
}

func (b *BoundStats) String() string {
	return fmt.Sprintf("log2(bound): count=%d min=%.2f avg=%.2f med=%.2f std=%.2f p95=%.2f max=%.2f",
		b.Count, b.Min, b.Mean, b.Median, b.Std, b.P95, b.Max)
}
