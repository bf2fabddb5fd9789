package srs

import "github.com/hanxue/hanxue-api/internal/domain"

// Quality bounds. Ratings follow SM-2: 0 is a complete blackout, 5 a perfect
// immediate recall.
const (
	MinQuality = 0
	MaxQuality = 5
)

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Floor applied to every recomputed ease factor
	MinEaseFactor float64

	// Ratings at or above this value count as a successful recall
	PassingQuality int

	// Fixed intervals (days) for the first two successful recalls
	FirstInterval  int
	SecondInterval int

	// Interval (days) forced after a lapse
	LapseInterval int

	// XP awarded per quality rating, indexed by quality
	XPByQuality [MaxQuality + 1]int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	MinEaseFactor  float64
	PassingQuality int
	FirstInterval  int
	SecondInterval int
	LapseInterval  int

	// Nil keeps the default XP table
	XPByQuality *[MaxQuality + 1]int
}

// NewDefaultParams creates a new Params instance with the classic SM-2 values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:  domain.MinEaseFactor,
		PassingQuality: 3,
		FirstInterval:  1,
		SecondInterval: 6,
		LapseInterval:  1,
		XPByQuality:    [MaxQuality + 1]int{0, 0, 0, 5, 8, 10},
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero values in config keep the defaults. The ease factor floor never drops
// below domain.MinEaseFactor because stored progress must stay valid.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > domain.MinEaseFactor {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.PassingQuality > MinQuality && config.PassingQuality <= MaxQuality {
		params.PassingQuality = config.PassingQuality
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.LapseInterval > 0 {
		params.LapseInterval = config.LapseInterval
	}
	if config.XPByQuality != nil {
		for q, xp := range config.XPByQuality {
			if xp >= 0 {
				params.XPByQuality[q] = xp
			}
		}
	}

	return params
}
