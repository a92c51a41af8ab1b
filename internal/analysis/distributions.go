package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides the Student's t calculations used by the engine
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// TTestPValue computes the two-tailed p-value for a t statistic
func (d *Distributions) TTestPValue(tStatistic float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 || math.IsNaN(tStatistic) {
		return 1.0
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(degreesOfFreedom)}
	p := 2 * (1 - tDist.CDF(math.Abs(tStatistic)))
	return math.Max(0, math.Min(1, p))
}

// OneSampleT returns the t statistic of a sample against a hypothesised mean
func (d *Distributions) OneSampleT(sampleMean, sampleStd float64, sampleSize int, baseline float64) float64 {
	se := sampleStd / math.Sqrt(float64(sampleSize))
	return (sampleMean - baseline) / se
}

// ConfidenceIntervalMean computes a t-based confidence interval for the mean
func (d *Distributions) ConfidenceIntervalMean(sampleMean, sampleStd float64, sampleSize int, confidenceLevel float64) (lower, upper float64) {
	if sampleSize < 2 || sampleStd == 0 {
		return sampleMean, sampleMean
	}

	df := float64(sampleSize - 1)
	alpha := 1.0 - confidenceLevel
	tCritical := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(1.0 - alpha/2.0)

	margin := tCritical * sampleStd / math.Sqrt(float64(sampleSize))
	return sampleMean - margin, sampleMean + margin
}
