package domain

import "math"

// EmojiOption is one bucket of the feedback slider.
type EmojiOption struct {
	Emoji  string `json:"emoji"`
	Label  string `json:"label"`
	Rating int    `json:"rating"`
}

// EmojiScale lists the slider buckets, most positive first.
var EmojiScale = []EmojiOption{
	{Emoji: "😊", Label: "Happy", Rating: 5},
	{Emoji: "😌", Label: "Peaceful", Rating: 4},
	{Emoji: "😐", Label: "Neutral", Rating: 3},
	{Emoji: "😔", Label: "Sad", Rating: 2},
	{Emoji: "😰", Label: "Stressed", Rating: 1},
}

const (
	MinHelpfulness = 1
	MaxHelpfulness = 5
)

const (
	SliderMin = 0.0
	SliderMax = 100.0
)

// SliderBucket quantizes a slider position in [0,100] to an EmojiScale index.
// Boundaries round down and out-of-range positions clamp to the first or last
// bucket.
func SliderBucket(position float64) int {
	if math.IsNaN(position) || position <= SliderMin {
		return 0
	}
	last := len(EmojiScale) - 1
	if position >= SliderMax {
		return last
	}
	return min(int(math.Floor(position/SliderMax*float64(len(EmojiScale)))), last)
}

// EmojiForSlider returns the option selected by a slider position.
func EmojiForSlider(position float64) EmojiOption {
	return EmojiScale[SliderBucket(position)]
}
