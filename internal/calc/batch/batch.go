package batch

import (
	"fmt"

	"scanmaster/internal/calc/coverage"
)

type CoverageBatchInput struct {
	Items []coverage.Input `json:"items"`
}

type CoverageBatchResult struct {
	Results []coverage.Result `json:"results"`
}

// CalculateCoverage runs the coverage engine over every item, e.g. the zones
// of a multi-zone technique sheet.
func CalculateCoverage(in CoverageBatchInput) (CoverageBatchResult, error) {
	if len(in.Items) == 0 {
		return CoverageBatchResult{}, fmt.Errorf("no items")
	}
	out := CoverageBatchResult{Results: make([]coverage.Result, 0, len(in.Items))}
	for _, item := range in.Items {
		res, err := coverage.Calculate(item)
		if err != nil {
			return CoverageBatchResult{}, err
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}
