package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instatistics/internal/analytics"
	"instatistics/internal/domain"
)

func TestMeanPostingGap_TwoDatesFiveDaysApart(t *testing.T) {
	posts := []domain.Post{
		{Timestamp: at("2024-03-01T09:00:00Z")},
		{Timestamp: at("2024-03-06T21:00:00Z")},
	}

	gap, err := analytics.MeanPostingGap(posts)

	require.NoError(t, err)
	assert.Equal(t, 5.0, gap)
}

func TestMeanPostingGap_IgnoresDuplicateDatesAndOrder(t *testing.T) {
	posts := []domain.Post{
		{Timestamp: at("2024-03-10T09:00:00Z")},
		{Timestamp: at("2024-03-01T09:00:00Z")},
		{Timestamp: at("2024-03-01T18:00:00Z")},
		{Timestamp: at("2024-03-04T09:00:00Z")},
	}

	gap, err := analytics.MeanPostingGap(posts)

	require.NoError(t, err)
	assert.Equal(t, 4.5, gap)
}

func TestMeanPostingGap_CrossesMonthAndDST(t *testing.T) {
	posts := []domain.Post{
		{Timestamp: at("2024-03-30T12:00:00+01:00")},
		{Timestamp: at("2024-04-02T12:00:00+02:00")},
	}

	gap, err := analytics.MeanPostingGap(posts)

	require.NoError(t, err)
	assert.Equal(t, 3.0, gap)
}

func TestMeanPostingGap_SingleDate_InsufficientData(t *testing.T) {
	posts := []domain.Post{
		{Timestamp: at("2024-03-01T09:00:00Z")},
		{Timestamp: at("2024-03-01T10:00:00Z")},
	}

	_, err := analytics.MeanPostingGap(posts)

	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestMeanPostingGap_NoPosts_InsufficientData(t *testing.T) {
	_, err := analytics.MeanPostingGap(nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}
