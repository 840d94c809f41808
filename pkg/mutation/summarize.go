package mutation

import (
	"gonum.org/v1/gonum/stat"
)

// Summarize builds a cluster from the AAF rows of its member mutations.
//
// Each row holds one mutation's AAF per local sample. The centroid is the
// column mean and the deviation the sample standard deviation; a cluster
// with a single member has zero deviation. Rows shorter than the first row
// are ignored.
func Summarize(rows [][]float64) Cluster {
	if len(rows) == 0 {
		return Cluster{}
	}
	width := len(rows[0])
	c := Cluster{
		Centroid: make([]float64, width),
		StdDev:   make([]float64, width),
	}
	col := make([]float64, 0, len(rows))
	for j := 0; j < width; j++ {
		col = col[:0]
		for _, r := range rows {
			if len(r) >= width {
				col = append(col, r[j])
			}
		}
		if len(col) < 2 {
			c.Centroid[j] = stat.Mean(col, nil)
			continue
		}
		c.Centroid[j], c.StdDev[j] = stat.MeanStdDev(col, nil)
	}
	for _, r := range rows {
		if len(r) >= width {
			c.Size++
		}
	}
	return c
}
