/*package lib contains the pieces of the boxio command line tool that other
programs might want to reuse: reading dataset descriptions, checking them,
and summarizing the fields read from them. All of the actual decoding is
done by lib/'s subpackages.
*/
package lib

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// Version is the version of the software.
	Version = "0.1.0"
)

// Summary describes the distribution of values in a field.
type Summary struct {
	N int
	Min, Max, Mean, Std float64
}

// Summarize summarizes x. The statistics of an empty array are NaN.
func Summarize(x []float64) Summary {
	if len(x) == 0 {
		nan := math.NaN()
		return Summary{ 0, nan, nan, nan, nan }
	}

	mean, std := stat.MeanStdDev(x, nil)
	if len(x) == 1 { std = 0 }
	return Summary{
		N: len(x), Min: floats.Min(x), Max: floats.Max(x),
		Mean: mean, Std: std,
	}
}
