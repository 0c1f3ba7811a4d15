package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	ErrInvalidConfig    = errors.New("invalid round configuration")
	ErrUnknownDirection = errors.New("unknown direction")
)

// RandomSource supplies the draws used to place obstacles and coins.
// IntN returns a value in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// NewRandomSource returns a deterministic source for a non-zero seed and a
// cryptographically seeded one otherwise.
func NewRandomSource(seed int64) RandomSource {
	if seed == 0 {
		var b [16]byte
		if _, err := crand.Read(b[:]); err == nil {
			return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])))
		}
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// DefaultRoundConfig returns the classic 10x30 board with 10 boxes and 5 coins
func DefaultRoundConfig() RoundConfig {
	return RoundConfig{
		Name:          "classic",
		Description:   "Classic 10x30 board with 10 boxes and 5 coins",
		Rows:          10,
		Cols:          30,
		ObstacleCount: 10,
		CoinCount:     5,
	}
}

// ValidateRoundConfig checks that a round can be built from the configuration
func ValidateRoundConfig(config *RoundConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if config.Rows < MinRows || config.Rows > MaxRows {
		return fmt.Errorf("%w: rows must be between %d and %d, got %d", ErrInvalidConfig, MinRows, MaxRows, config.Rows)
	}
	if config.Cols < MinCols || config.Cols > MaxCols {
		return fmt.Errorf("%w: cols must be between %d and %d, got %d", ErrInvalidConfig, MinCols, MaxCols, config.Cols)
	}

	if config.ObstacleCount < 0 {
		return fmt.Errorf("%w: obstacle_count must not be negative, got %d", ErrInvalidConfig, config.ObstacleCount)
	}
	if config.CoinCount < 0 {
		return fmt.Errorf("%w: coin_count must not be negative, got %d", ErrInvalidConfig, config.CoinCount)
	}

	// Obstacles are drawn from [2, n-2). On a 4-wide side that range collapses
	// to index 2; on a 3-wide side it is inverted and holds no interior tile.
	if config.ObstacleCount > 0 && (config.Rows < 4 || config.Cols < 4) {
		return fmt.Errorf("%w: obstacles need at least a 4x4 board, got %dx%d", ErrInvalidConfig, config.Rows, config.Cols)
	}

	return nil
}

// NewRound builds a fresh round: walls on the border, floor inside, then
// obstacles, then coins (a later draw overwrites an earlier one), then the
// player at (1,1). TotalCoins is the requested coin count even when draws
// collide.
func NewRound(config RoundConfig, rnd RandomSource) (*RoundState, error) {
	if err := ValidateRoundConfig(&config); err != nil {
		return nil, err
	}
	if rnd == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidConfig)
	}

	r := newWalledRound(config.Rows, config.Cols)

	for i := 0; i < config.ObstacleCount; i++ {
		x := between(rnd, 2, config.Cols-2)
		y := between(rnd, 2, config.Rows-2)
		r.grid[y][x] = Obstacle
	}

	for i := 0; i < config.CoinCount; i++ {
		x := between(rnd, 1, config.Cols-1)
		y := between(rnd, 1, config.Rows-1)
		r.grid[y][x] = Coin
	}

	r.player = Position{X: 1, Y: 1}
	r.grid[1][1] = Player
	r.totalCoins = config.CoinCount

	return r, nil
}

// between draws from [lo, hi). An empty range yields lo without a draw.
func between(rnd RandomSource, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rnd.IntN(hi-lo)
}
