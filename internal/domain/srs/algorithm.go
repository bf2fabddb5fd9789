package srs

import (
	"math"
	"time"

	"github.com/hanxue/hanxue-api/internal/domain"
)

// calculateEaseFactor applies the SM-2 ease factor update for a quality rating.
//
// The ease factor controls how fast intervals grow. A perfect recall (5) raises
// it by 0.1, a hesitant one (4) leaves it unchanged and anything lower erodes
// it, down to params.MinEaseFactor.
//
// Parameters:
//   - currentEF: the ease factor before this review
//   - quality: the validated rating in [0,5]
//   - params: configuration parameters for the SRS algorithm
//
// Returns:
//   - EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02)), floored and rounded to 2 decimals
func calculateEaseFactor(currentEF float64, quality int, params *Params) float64 {
	miss := float64(MaxQuality - quality)
	newEF := currentEF + (0.1 - miss*(0.08+miss*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return roundTo2(newEF)
}

// calculateInterval returns the number of days until the next review after a
// successful recall.
//
// Parameters:
//   - repetitions: the repetition count after this review was counted
//   - easeFactor: the ease factor that fed this review (not the updated one)
//   - previousInterval: the interval in days before this review
//   - params: configuration parameters for the SRS algorithm
//
// Algorithm behavior:
//   - repetitions <= 0: 0, the item is not scheduled yet
//   - repetitions == 1: params.FirstInterval (1 day)
//   - repetitions == 2: params.SecondInterval (6 days)
//   - otherwise: round(previousInterval * easeFactor)
func calculateInterval(repetitions int, easeFactor float64, previousInterval int, params *Params) int {
	switch {
	case repetitions <= 0:
		return 0
	case repetitions == 1:
		return params.FirstInterval
	case repetitions == 2:
		return params.SecondInterval
	default:
		return int(math.Round(float64(previousInterval) * easeFactor))
	}
}

// averageResponse folds a new latency into the stored average. When only one
// of the two is present it is used as is.
func averageResponse(current, latency *int) *int {
	switch {
	case current != nil && latency != nil:
		avg := int(math.Round(float64(*current+*latency) / 2))
		return &avg
	case latency != nil:
		v := *latency
		return &v
	case current != nil:
		v := *current
		return &v
	default:
		return nil
	}
}

// calculateNextProgress produces the progress after one review.
//
// The branch on quality decides repetitions and interval, then the ease factor
// is recomputed from the same pre-review value on both branches, so a lapse
// still erodes it. prior is never modified.
func calculateNextProgress(
	prior *domain.ReviewProgress,
	quality int,
	latencyMs *int,
	now time.Time,
	params *Params,
) *domain.ReviewProgress {
	now = now.UTC()

	var next domain.ReviewProgress
	if prior != nil {
		next = *prior
	} else {
		next = domain.DefaultReviewProgress(now)
	}

	ef := next.EaseFactor
	if quality < params.PassingQuality {
		next.Repetitions = 0
		next.IntervalDays = params.LapseInterval
		next.TimesWrong++
	} else {
		next.Repetitions++
		next.IntervalDays = calculateInterval(next.Repetitions, ef, next.IntervalDays, params)
		next.TimesCorrect++
	}
	next.EaseFactor = calculateEaseFactor(ef, quality, params)

	next.TimesSeen++
	next.AvgResponseMs = averageResponse(next.AvgResponseMs, latencyMs)
	next.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)
	next.LastReviewedAt = now
	next.UpdatedAt = now

	return &next
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
