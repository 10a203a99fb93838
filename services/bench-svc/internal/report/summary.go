package report

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary агрегаты по раундам; времена в секундах
type Summary struct {
	Rounds         int     `json:"rounds"`
	TotalTime      float64 `json:"total_time"`
	MeanTime       float64 `json:"mean_time"`
	StdDevTime     float64 `json:"stddev_time"`
	MedianTime     float64 `json:"p50_time"`
	P90Time        float64 `json:"p90_time"`
	P99Time        float64 `json:"p99_time"`
	MaxTime        float64 `json:"max_time"`
	SyndromeNum    int     `json:"syndrome_num"`
	MeanSyndromes  float64 `json:"mean_syndrome_num"`
	TimePerDefect  float64 `json:"time_per_syndrome"`
	Paths          int     `json:"paths"`
	Unreachable    int     `json:"unreachable"`
	TotalFinalized int     `json:"finalized"`
}

// Summarize считает сводку. Пустой список даёт нулевую сводку.
func Summarize(entries []Entry) Summary {
	n := len(entries)
	if n == 0 {
		return Summary{}
	}

	times := make([]float64, n)
	syndromes := make([]float64, n)
	s := Summary{Rounds: n}
	for i, e := range entries {
		times[i] = e.DecodingTime
		syndromes[i] = float64(e.SyndromeNum)
		s.SyndromeNum += e.SyndromeNum
		s.Paths += e.Paths
		s.Unreachable += e.Unreachable
		s.TotalFinalized += e.Finalized
	}

	s.TotalTime = floats.Sum(times)
	s.MaxTime = floats.Max(times)
	s.MeanSyndromes = stat.Mean(syndromes, nil)
	if n > 1 {
		s.MeanTime, s.StdDevTime = stat.MeanStdDev(times, nil)
	} else {
		s.MeanTime = times[0]
	}

	sorted := append([]float64(nil), times...)
	sort.Float64s(sorted)
	s.MedianTime = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P90Time = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	s.P99Time = stat.Quantile(0.99, stat.Empirical, sorted, nil)

	if s.SyndromeNum > 0 {
		s.TimePerDefect = s.TotalTime / float64(s.SyndromeNum)
	}
	return s
}
