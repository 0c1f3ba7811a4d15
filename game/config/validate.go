package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/coincrate/game/engine"
)

// DefaultSamples is how many seeded rounds Analyze builds per configuration
const DefaultSamples = 200

// crowdedFillRatio is the share of the interior above which a board is
// reported as crowded
const crowdedFillRatio = 0.5

// Analysis summarizes how rounds built from a configuration tend to look
type Analysis struct {
	InteriorArea   int     `json:"interior_area"`
	ObstacleArea   int     `json:"obstacle_area"`
	FillRatio      float64 `json:"fill_ratio"`
	Samples        int     `json:"samples"`
	LostCoinRounds int     `json:"lost_coin_rounds"`
	LostCoins      int     `json:"lost_coins"`
}

// CollisionRate is the share of sampled rounds that lost at least one coin
func (a Analysis) CollisionRate() float64 {
	if a.Samples == 0 {
		return 0
	}
	return float64(a.LostCoinRounds) / float64(a.Samples)
}

// ValidationResult captures the outcome of validating a single file.
// Errors make the file unusable; warnings describe boards that load but may
// produce unwinnable rounds.
type ValidationResult struct {
	File     string              `json:"file"`
	Valid    bool                `json:"valid"`
	Errors   []string            `json:"errors,omitempty"`
	Warnings []string            `json:"warnings,omitempty"`
	Config   *engine.RoundConfig `json:"config,omitempty"`
	Analysis *Analysis           `json:"analysis,omitempty"`
}

// Analyze measures a configuration and builds samples seeded rounds to count
// how often random placements collide. A lost coin keeps TotalCoins out of
// reach, so such a round can never be won.
func Analyze(config engine.RoundConfig, samples int) (Analysis, error) {
	if err := engine.ValidateRoundConfig(&config); err != nil {
		return Analysis{}, err
	}

	a := Analysis{
		InteriorArea: (config.Rows - 2) * (config.Cols - 2),
		Samples:      samples,
	}
	if config.Rows >= 4 && config.Cols >= 4 {
		a.ObstacleArea = placementSpan(config.Cols) * placementSpan(config.Rows)
	}
	a.FillRatio = float64(config.ObstacleCount+config.CoinCount) / float64(a.InteriorArea)

	for seed := 1; seed <= samples; seed++ {
		round, err := engine.NewRound(config, engine.NewRandomSource(int64(seed)))
		if err != nil {
			return Analysis{}, err
		}
		if lost := engine.UnreachableCoins(round.Snapshot()); lost > 0 {
			a.LostCoinRounds++
			a.LostCoins += lost
		}
	}

	return a, nil
}

// placementSpan is the width of the obstacle range [2, n-2), which collapses
// to the single index 2 on a side of length 4
func placementSpan(n int) int {
	if n-4 < 1 {
		return 1
	}
	return n - 4
}

// ValidateFile loads, validates and analyzes one configuration file
func ValidateFile(path string, samples int) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(path),
		Valid: true,
	}

	config, err := readConfigFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Config = config

	analysis, err := Analyze(*config, samples)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Analysis = &analysis

	if config.CoinCount == 0 {
		result.Warnings = append(result.Warnings, "coin_count is 0, every round starts already won")
	}
	if analysis.FillRatio > crowdedFillRatio {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("board is crowded: obstacles and coins fill %.0f%% of the interior", analysis.FillRatio*100))
	}
	if analysis.LostCoinRounds > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d of %d sampled rounds lose coins to placement collisions and cannot be won",
				analysis.LostCoinRounds, analysis.Samples))
	}

	return result
}

// ValidateDir validates every configuration file in dir, sorted by file name
func ValidateDir(dir string, samples int) ([]ValidationResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !hasConfigExtension(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	for _, name := range files {
		results = append(results, ValidateFile(filepath.Join(dir, name), samples))
	}
	return results, nil
}
