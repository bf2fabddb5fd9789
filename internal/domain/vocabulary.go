package domain

// Vocabulary is a dictionary entry that learners review. Content is managed
// elsewhere; this API only reads it.
type Vocabulary struct {
	ID            int64  `json:"id"`
	Simplified    string `json:"simplified"`
	Traditional   string `json:"traditional,omitempty"`
	Pinyin        string `json:"pinyin"`
	HanViet       string `json:"han_viet,omitempty"`
	MeaningVI     string `json:"meaning_vi"`
	MeaningEN     string `json:"meaning_en,omitempty"`
	HSKLevel      int    `json:"hsk_level"`
	AudioURL      string `json:"audio_url,omitempty"`
	FrequencyRank *int   `json:"frequency_rank,omitempty"`
}

// VocabularyProgress pairs a vocabulary entry with the learner's progress on
// it, as returned by due-review listings.
type VocabularyProgress struct {
	Vocabulary
	Progress ReviewProgress `json:"progress"`
}
