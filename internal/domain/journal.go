package domain

// Sentiment is the coarse classification attached to a reply.
type Sentiment string

const (
	SentimentHappy    Sentiment = "happy"
	SentimentStressed Sentiment = "stressed"
	SentimentNeutral  Sentiment = "neutral"
)

const (
	MinMood     = 1
	MaxMood     = 5
	DefaultMood = 3
)

// Valid reports whether s is one of the known buckets.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentHappy, SentimentStressed, SentimentNeutral:
		return true
	default:
		return false
	}
}

// ClampMood bounds a mood score to [MinMood, MaxMood].
func ClampMood(mood int) int {
	if mood < MinMood {
		return MinMood
	}
	if mood > MaxMood {
		return MaxMood
	}
	return mood
}

// MoodBucket classifies a numeric mood. It is only used to pick content for
// the current mood; a reply's sentiment always comes from the reply service.
func MoodBucket(mood int) Sentiment {
	switch {
	case mood >= 4:
		return SentimentHappy
	case mood <= 2:
		return SentimentStressed
	default:
		return SentimentNeutral
	}
}

// Reply is the structured answer of the reply service.
type Reply struct {
	Text      string    `json:"text"`
	Sentiment Sentiment `json:"sentiment"`
	Mood      int       `json:"mood"`
	Degraded  bool      `json:"degraded"`
}

// MoodSample carries the sentiment and mood a session currently holds.
type MoodSample struct {
	Sentiment Sentiment
	Mood      int
}

// Feedback is the emoji/rating/helpfulness triple attached to an entry.
type Feedback struct {
	Emoji       string `json:"emoji"`
	Rating      int    `json:"rating"`
	Helpfulness int    `json:"helpfulness"`
}

// JournalEntry is one completed conversation turn.
type JournalEntry struct {
	ID         string    `json:"id"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Transcript string    `json:"transcript"`
	Response   string    `json:"response"`
	Sentiment  Sentiment `json:"sentiment"`
	Mood       int       `json:"mood"`
	Feedback   *Feedback `json:"feedback,omitempty"`
}

// MoodData is the mood sample for one calendar day.
type MoodData struct {
	Date      string    `json:"date"`
	Mood      int       `json:"mood"`
	Sentiment Sentiment `json:"sentiment"`
}

// FeedbackData is one feedback submission.
type FeedbackData struct {
	ID          string    `json:"id"`
	Emoji       string    `json:"emoji"`
	Rating      int       `json:"rating"`
	Helpfulness int       `json:"helpfulness"`
	Date        string    `json:"date"`
	Sentiment   Sentiment `json:"sentiment"`
}

const (
	DefaultUserName  = "Friend"
	DefaultDailyGoal = "Take 5 minutes for mindfulness"
)

// Settings is the scalar process-wide profile state.
type Settings struct {
	UserName      string `json:"userName"`
	DailyGoal     string `json:"dailyGoal"`
	GoalCompleted bool   `json:"goalCompleted"`
}

// DefaultSettings returns the settings used before anything is persisted.
func DefaultSettings() Settings {
	return Settings{UserName: DefaultUserName, DailyGoal: DefaultDailyGoal}
}

const (
	DayLayout       = "2006-01-02"
	ClockLayout     = "15:04:05"
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)
