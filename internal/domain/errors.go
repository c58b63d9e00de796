package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable is returned when the profile feed cannot be read.
	// It covers missing accounts, private accounts, network failures and
	// fetch deadlines.
	ErrSourceUnavailable = errors.New("post source unavailable")

	// ErrProfileNotFound is returned when the profile does not exist.
	ErrProfileNotFound = fmt.Errorf("%w: profile not found", ErrSourceUnavailable)

	// ErrProfilePrivate is returned when the profile is not public.
	ErrProfilePrivate = fmt.Errorf("%w: profile is private", ErrSourceUnavailable)

	// ErrMalformedInput is returned when an uploaded table cannot be parsed.
	ErrMalformedInput = errors.New("malformed input")

	// ErrEmptyResult is returned when a dataset has no posts to analyze.
	// It is informational, not a failure of the source.
	ErrEmptyResult = errors.New("no posts to analyze")

	// ErrInsufficientData is returned when a statistic needs more data points.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidProfile is returned when the submitted username or limit is invalid.
	ErrInvalidProfile = errors.New("invalid profile request")

	// ErrRateLimited is returned when rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrDatasetExpired is returned when an uploaded dataset is no longer cached.
	ErrDatasetExpired = errors.New("dataset expired")
)
