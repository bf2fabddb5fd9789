package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/service/review"
)

// Request and response bodies use camelCase field names, which the web and
// mobile clients already consume.

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=8,max=72"`
	DisplayName string `json:"displayName" validate:"omitempty,max=100"`
	TargetHSK   *int   `json:"targetHsk"   validate:"omitempty,min=1,max=9"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	TargetHSK   int       `json:"targetHsk"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuthResponse defines the successful response for register and login.
type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresAt    string       `json:"expiresAt"` // RFC 3339, access token expiry
	User         UserResponse `json:"user"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    string `json:"expiresAt"`
}

// ReviewRequest is one graded recall. Pointers distinguish a missing field
// from a zero quality.
type ReviewRequest struct {
	VocabID    *int64 `json:"vocabId"    validate:"required,gt=0"`
	Quality    *int   `json:"quality"    validate:"required,min=0,max=5"`
	ResponseMs *int   `json:"responseMs" validate:"omitempty,min=0"`
}

// UpdateProfileRequest changes profile fields; omitted fields are kept.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=100"`
	TargetHSK   *int    `json:"targetHsk"   validate:"omitempty,min=1,max=9"`
}

// ChangePasswordRequest replaces the account password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8,max=72"`
}

// VocabularyResponse is a dictionary entry.
type VocabularyResponse struct {
	ID          int64  `json:"id"`
	Simplified  string `json:"simplified"`
	Traditional string `json:"traditional,omitempty"`
	Pinyin      string `json:"pinyin"`
	HanViet     string `json:"hanViet,omitempty"`
	MeaningVI   string `json:"meaningVi"`
	MeaningEN   string `json:"meaningEn,omitempty"`
	HSKLevel    int    `json:"hskLevel"`
	AudioURL    string `json:"audioUrl,omitempty"`
}

// ProgressResponse is a learner's scheduling state on one item.
type ProgressResponse struct {
	MasteryLevel  int        `json:"masteryLevel"`
	EaseFactor    float64    `json:"easeFactor"`
	IntervalDays  int        `json:"intervalDays"`
	Repetitions   int        `json:"repetitions"`
	NextReview    time.Time  `json:"nextReview"`
	LastReviewed  *time.Time `json:"lastReviewed,omitempty"`
	TimesSeen     int        `json:"timesSeen"`
	TimesCorrect  int        `json:"timesCorrect"`
	TimesWrong    int        `json:"timesWrong"`
	AvgResponseMs *int       `json:"avgResponseMs,omitempty"`
}

// DueItemResponse is a due vocabulary entry with its progress.
type DueItemResponse struct {
	VocabularyResponse
	Progress ProgressResponse `json:"progress"`
}

// ListResponse wraps listings with their length.
type ListResponse[T any] struct {
	Count int `json:"count"`
	Data  []T `json:"data"`
}

// StreakResponse reports streak and XP counters.
type StreakResponse struct {
	CurrentStreak  int          `json:"currentStreak"`
	LongestStreak  int          `json:"longestStreak"`
	TotalStudyDays int          `json:"totalStudyDays"`
	LastStudyDate  *domain.Date `json:"lastStudyDate"`
	TotalXP        int64        `json:"totalXp"`
}

// ReviewResponse is returned after a review is recorded.
type ReviewResponse struct {
	Success            bool             `json:"success"`
	VocabID            int64            `json:"vocabId"`
	Quality            int              `json:"quality"`
	QualityDescription string           `json:"qualityDescription"`
	NewProgress        ProgressResponse `json:"newProgress"`
	XPAwarded          int              `json:"xpAwarded"`
	TotalXP            int64            `json:"totalXp"`
	StreakChanged      bool             `json:"streakChanged"`
	Streak             StreakResponse   `json:"streak"`
}

// ItemProgressResponse answers GET /api/progress/{vocabId}.
type ItemProgressResponse struct {
	Learned    bool              `json:"learned"`
	VocabID    int64             `json:"vocabId,omitempty"`
	Simplified string            `json:"simplified,omitempty"`
	Pinyin     string            `json:"pinyin,omitempty"`
	MeaningVI  string            `json:"meaningVi,omitempty"`
	Progress   *ProgressResponse `json:"progress,omitempty"`
}

// StatsResponse summarizes a learner's progress.
type StatsResponse struct {
	TotalLearned        int         `json:"totalLearned"`
	Mastered            int         `json:"mastered"`
	DueToday            int         `json:"dueToday"`
	AvgMastery          float64     `json:"avgMastery"`
	TotalReviews        int         `json:"totalReviews"`
	Accuracy            int         `json:"accuracy"`
	MasteryDistribution map[int]int `json:"masteryDistribution"`
	HSKDistribution     map[int]int `json:"hskDistribution"`
}

// ProfileResponse is the account with its headline counters.
type ProfileResponse struct {
	UserResponse
	TotalXP       int64 `json:"totalXp"`
	CurrentStreak int   `json:"currentStreak"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		TargetHSK:   u.TargetHSK,
		CreatedAt:   u.CreatedAt,
	}
}

func vocabularyToResponse(v domain.Vocabulary) VocabularyResponse {
	return VocabularyResponse{
		ID:          v.ID,
		Simplified:  v.Simplified,
		Traditional: v.Traditional,
		Pinyin:      v.Pinyin,
		HanViet:     v.HanViet,
		MeaningVI:   v.MeaningVI,
		MeaningEN:   v.MeaningEN,
		HSKLevel:    v.HSKLevel,
		AudioURL:    v.AudioURL,
	}
}

func progressToResponse(p *domain.ReviewProgress) ProgressResponse {
	resp := ProgressResponse{
		MasteryLevel:  p.MasteryTier(),
		EaseFactor:    p.EaseFactor,
		IntervalDays:  p.IntervalDays,
		Repetitions:   p.Repetitions,
		NextReview:    p.NextReviewAt,
		TimesSeen:     p.TimesSeen,
		TimesCorrect:  p.TimesCorrect,
		TimesWrong:    p.TimesWrong,
		AvgResponseMs: p.AvgResponseMs,
	}
	if !p.LastReviewedAt.IsZero() {
		last := p.LastReviewedAt
		resp.LastReviewed = &last
	}
	return resp
}

func dueItemsToResponse(items []domain.VocabularyProgress) ListResponse[DueItemResponse] {
	data := make([]DueItemResponse, 0, len(items))
	for i := range items {
		data = append(data, DueItemResponse{
			VocabularyResponse: vocabularyToResponse(items[i].Vocabulary),
			Progress:           progressToResponse(&items[i].Progress),
		})
	}
	return ListResponse[DueItemResponse]{Count: len(data), Data: data}
}

func newItemsToResponse(items []domain.Vocabulary) ListResponse[VocabularyResponse] {
	data := make([]VocabularyResponse, 0, len(items))
	for _, v := range items {
		data = append(data, vocabularyToResponse(v))
	}
	return ListResponse[VocabularyResponse]{Count: len(data), Data: data}
}

func streakToResponse(c *domain.UserCounters) StreakResponse {
	return StreakResponse{
		CurrentStreak:  c.Streak.CurrentStreak,
		LongestStreak:  c.Streak.LongestStreak,
		TotalStudyDays: c.Streak.TotalStudyDays,
		LastStudyDate:  c.Streak.LastStudyDate,
		TotalXP:        c.TotalXP,
	}
}

func reviewResultToResponse(quality int, result *review.ReviewResult) ReviewResponse {
	return ReviewResponse{
		Success:            true,
		VocabID:            result.Progress.VocabularyID,
		Quality:            quality,
		QualityDescription: result.Description,
		NewProgress:        progressToResponse(result.Progress),
		XPAwarded:          result.XPAwarded,
		TotalXP:            result.TotalXP,
		StreakChanged:      result.StreakChanged,
		Streak: StreakResponse{
			CurrentStreak:  result.Streak.CurrentStreak,
			LongestStreak:  result.Streak.LongestStreak,
			TotalStudyDays: result.Streak.TotalStudyDays,
			LastStudyDate:  result.Streak.LastStudyDate,
			TotalXP:        result.TotalXP,
		},
	}
}

func statsToResponse(s *review.Stats) StatsResponse {
	return StatsResponse{
		TotalLearned:        s.TotalLearned,
		Mastered:            s.Mastered,
		DueToday:            s.DueToday,
		AvgMastery:          s.AvgMastery,
		TotalReviews:        s.TotalReviews,
		Accuracy:            s.Accuracy,
		MasteryDistribution: nonNilMap(s.MasteryDistribution),
		HSKDistribution:     nonNilMap(s.HSKDistribution),
	}
}

func nonNilMap(m map[int]int) map[int]int {
	if m == nil {
		return map[int]int{}
	}
	return m
}
