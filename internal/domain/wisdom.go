package domain

// WisdomAudienceAll marks a card that suits every mood bucket.
const WisdomAudienceAll = "all"

// WisdomCard is a short community reflection shown after feedback.
type WisdomCard struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Audience string `json:"audience"`
	Likes    int    `json:"likes"`
}

// CommunityWisdom is the built-in card catalog.
var CommunityWisdom = []WisdomCard{
	{
		ID:       "1",
		Title:    "The Power of Small Moments",
		Content:  "I've learned that happiness isn't about big achievements. It's about noticing the small things - the first sip of coffee, a friend's laugh, or the way sunlight streams through my window.",
		Author:   "Maya K.",
		Category: "mindfulness",
		Audience: string(SentimentHappy),
		Likes:    247,
	},
	{
		ID:       "2",
		Title:    "Breathing Through the Storm",
		Content:  "When anxiety feels overwhelming, I remind myself: this feeling is temporary. I take three deep breaths and ask myself - what's one small thing I can do right now?",
		Author:   "Alex R.",
		Category: "resilience",
		Audience: string(SentimentStressed),
		Likes:    189,
	},
	{
		ID:       "3",
		Title:    "Permission to Rest",
		Content:  "I used to think rest was lazy. Now I know it's revolutionary. Your worth isn't measured by your productivity. You deserve rest, just because you exist.",
		Author:   "Jordan L.",
		Category: "self-care",
		Audience: WisdomAudienceAll,
		Likes:    312,
	},
}

const maxWisdomCards = 3

// WisdomFor picks up to three cards for the bucket of the given mood, keeping
// catalog order.
func WisdomFor(cards []WisdomCard, mood int) []WisdomCard {
	bucket := string(MoodBucket(mood))
	picked := make([]WisdomCard, 0, maxWisdomCards)
	for _, card := range cards {
		if card.Audience != bucket && card.Audience != WisdomAudienceAll {
			continue
		}
		picked = append(picked, card)
		if len(picked) == maxWisdomCards {
			break
		}
	}
	return picked
}

// DailyTip returns the short practice suggested alongside a reply.
func DailyTip(sentiment Sentiment) string {
	switch sentiment {
	case SentimentStressed:
		return "Try the 4-7-8 breathing technique: Inhale for 4, hold for 7, exhale for 8."
	case SentimentHappy:
		return "Gratitude amplifies joy! Write down 3 things you're grateful for today."
	default:
		return "Mindful moments matter. Take 5 deep breaths and notice your surroundings."
	}
}
