package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"toolgate/internal/domain"
)

func newSearchRegistry(t *testing.T) *Registry {
	t.Helper()
	fetcher := newFakeFetcher()
	fetcher.set("weather", []domain.RawTool{
		{Name: "get_forecast", Description: "Daily forecast for a city"},
		{Name: "get_alerts", Description: "Severe storm alerts", Parameters: []domain.ToolParameter{{Name: "region"}}},
	}, nil)
	local := fakeLocal{tools: []domain.ToolDescriptor{
		localCalculator,
		{Name: "text-analyzer", Description: "Analyzes text and returns information about it"},
	}}
	r := NewRegistry(testConfig("weather"), local, fetcher, nil, nil, zap.NewNop())
	_, err := r.Refresh(context.Background())
	require.NoError(t, err)
	return r
}

func TestSearch_MatchesDescriptionAndName(t *testing.T) {
	r := newSearchRegistry(t)

	got, err := r.Search("forecast", 10)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	require.Equal(t, "weather.get_forecast", got[0].Name)

	got, err = r.Search("mathematical", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"calculator"}, toolNames(got))

	got, err = r.Search("region", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"weather.get_alerts"}, toolNames(got))
}

func TestSearch_ServiceNameFindsItsTools(t *testing.T) {
	r := newSearchRegistry(t)

	got, err := r.Search("weather", 10)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"weather.get_alerts", "weather.get_forecast"}, toolNames(got))
}

func TestSearch_EmptyQueryReturnsFirstN(t *testing.T) {
	r := newSearchRegistry(t)

	got, err := r.Search("  ", 2)
	require.NoError(t, err)
	require.Equal(t, []string{"calculator", "text-analyzer"}, toolNames(got))

	got, err = r.Search("", 0)
	require.NoError(t, err)
	require.Len(t, got, 4)
}

func TestSearch_LimitAndNoMatch(t *testing.T) {
	r := newSearchRegistry(t)

	got, err := r.Search("weather", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = r.Search("zzzqqq", 10)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSearch_ScanFallback(t *testing.T) {
	snap := newSnapshot(map[string]domain.ToolDescriptor{
		"calculator":           localCalculator,
		"weather.get_forecast": {Name: "weather.get_forecast", Description: "calculator-free forecast"},
	}, 1, testTime, zap.NewNop())

	got, err := snap.search("calc", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"calculator", "weather.get_forecast"}, toolNames(got))
}

func TestSplitTerms(t *testing.T) {
	require.Equal(t, "weather get forecast", splitTerms("weather.get_forecast"))
	require.Equal(t, "text analyzer", splitTerms("text-analyzer"))
}
