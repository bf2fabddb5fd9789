package srs

// xpForQuality looks up the reward for a rating. Out-of-range ratings earn
// nothing.
func xpForQuality(quality int, params *Params) int {
	if quality < MinQuality || quality > MaxQuality {
		return 0
	}
	return params.XPByQuality[quality]
}

var qualityDescriptions = [MaxQuality + 1]string{
	"Không nhớ gì",
	"Nhớ sai nhưng nhận ra đáp án",
	"Nhớ sai nhưng quen thuộc",
	"Nhớ đúng với nỗ lực",
	"Nhớ đúng sau do dự",
	"Nhớ đúng ngay lập tức",
}

// QualityDescription returns the learner-facing (Vietnamese) label of a rating.
func QualityDescription(quality int) string {
	if quality < MinQuality || quality > MaxQuality {
		return "Unknown"
	}
	return qualityDescriptions[quality]
}
