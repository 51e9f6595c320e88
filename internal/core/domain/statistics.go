package domain

import (
	"math"
	"sort"
)

// StatisticsReport aggregates the energy-object collection.
type StatisticsReport struct {
	TotalCount        int     `json:"total_count"`
	ActiveCount       int     `json:"active_count"`
	InactiveCount     int     `json:"inactive_count"`
	ActivePercentage  float64 `json:"active_percentage"`
	TotalPower        float64 `json:"total_power"`
	AveragePower      float64 `json:"average_power"`
	AverageEfficiency float64 `json:"average_efficiency"`

	CountByType             map[string]int     `json:"count_by_type"`
	PercentageByType        map[string]float64 `json:"percentage_by_type"`
	PowerByType             map[string]float64 `json:"power_by_type"`
	AverageEfficiencyByType map[string]float64 `json:"average_efficiency_by_type"`

	Oldest *EnergyObject `json:"oldest,omitempty"`
	Newest *EnergyObject `json:"newest,omitempty"`
}

// Types returns the distinct object types in the report, sorted.
func (r *StatisticsReport) Types() []string {
	types := make([]string, 0, len(r.CountByType))
	for t := range r.CountByType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Aggregate computes the statistics report over records. It never fails:
// an empty input yields zero rates and empty maps.
func Aggregate(records []*EnergyObject) *StatisticsReport {
	r := &StatisticsReport{
		CountByType:             map[string]int{},
		PercentageByType:        map[string]float64{},
		PowerByType:             map[string]float64{},
		AverageEfficiencyByType: map[string]float64{},
	}

	total := len(records)
	r.TotalCount = total
	if total == 0 {
		return r
	}

	var totalPower, totalEfficiency float64
	efficiencySum := map[string]float64{}

	for _, o := range records {
		if o.Active {
			r.ActiveCount++
		}
		totalPower += o.Power
		totalEfficiency += o.Efficiency

		r.CountByType[o.Type]++
		r.PowerByType[o.Type] += o.Power
		efficiencySum[o.Type] += o.Efficiency

		// Strict comparisons keep the first record on ties.
		if r.Oldest == nil || o.CommissioningYear < r.Oldest.CommissioningYear {
			r.Oldest = o
		}
		if r.Newest == nil || o.CommissioningYear > r.Newest.CommissioningYear {
			r.Newest = o
		}
	}

	n := float64(total)
	r.InactiveCount = total - r.ActiveCount
	r.ActivePercentage = RoundHalfUp(float64(r.ActiveCount)*100/n, 1)
	r.TotalPower = totalPower
	r.AveragePower = RoundHalfUp(totalPower/n, 2)
	r.AverageEfficiency = RoundHalfUp(totalEfficiency/n, 1)

	for t, count := range r.CountByType {
		r.PercentageByType[t] = RoundHalfUp(float64(count)*100/n, 1)
		r.AverageEfficiencyByType[t] = efficiencySum[t] / float64(count)
	}

	return r
}

// RoundHalfUp rounds v to the given number of decimal places, with halves
// rounded towards positive infinity.
func RoundHalfUp(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Floor(v*scale+0.5) / scale
}
