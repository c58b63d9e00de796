package usecases

import (
	"context"
	"errors"

	"instatistics/internal/analytics"
	"instatistics/internal/domain"
	"instatistics/pkg/log"
)

// AnalyzeDatasetUseCase builds the dashboard report of a dataset.
type AnalyzeDatasetUseCase struct{}

// NewAnalyzeDatasetUseCase creates a new AnalyzeDatasetUseCase.
func NewAnalyzeDatasetUseCase() *AnalyzeDatasetUseCase {
	return &AnalyzeDatasetUseCase{}
}

// Execute aggregates the dataset.
// Returns domain.ErrEmptyResult for datasets without posts.
func (uc *AnalyzeDatasetUseCase) Execute(ctx context.Context, ds *domain.Dataset) (domain.Report, error) {
	report, err := analytics.Aggregate(ds)
	if errors.Is(err, domain.ErrEmptyResult) {
		key := ""
		if ds != nil {
			key = ds.Key
		}
		log.GlobalInfoCtx(ctx, "no posts to analyze", "key", key)
		return report, err
	}
	if err != nil {
		return report, err
	}

	if report.LeadingMonthTrimmed {
		first := report.Monthly[0]
		log.GlobalDebugCtx(ctx, "leading month trimmed", "key", ds.Key, "month", first.Month.String(), "count", first.Count)
	}

	return report, nil
}
