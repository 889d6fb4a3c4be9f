package domain

import (
	"strings"
	"testing"
)

func TestMoodBucket(t *testing.T) {
	t.Parallel()

	want := map[int]Sentiment{
		0: SentimentStressed,
		1: SentimentStressed,
		2: SentimentStressed,
		3: SentimentNeutral,
		4: SentimentHappy,
		5: SentimentHappy,
	}
	for mood, sentiment := range want {
		if got := MoodBucket(mood); got != sentiment {
			t.Fatalf("MoodBucket(%d) = %q, want %q", mood, got, sentiment)
		}
	}
}

func TestClampMood(t *testing.T) {
	t.Parallel()

	if ClampMood(-4) != MinMood || ClampMood(9) != MaxMood || ClampMood(4) != 4 {
		t.Fatalf("unexpected clamp results")
	}
}

func TestSentimentValid(t *testing.T) {
	t.Parallel()

	for _, s := range []Sentiment{SentimentHappy, SentimentStressed, SentimentNeutral} {
		if !s.Valid() {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	if Sentiment("angry").Valid() || Sentiment("").Valid() {
		t.Fatalf("expected unknown sentiment to be invalid")
	}
}

func TestWisdomForPicksBucketAndSharedCards(t *testing.T) {
	t.Parallel()

	happy := WisdomFor(CommunityWisdom, 5)
	if len(happy) != 2 || happy[0].ID != "1" || happy[1].ID != "3" {
		t.Fatalf("unexpected happy cards: %+v", happy)
	}
	stressed := WisdomFor(CommunityWisdom, 1)
	if len(stressed) != 2 || stressed[0].ID != "2" || stressed[1].ID != "3" {
		t.Fatalf("unexpected stressed cards: %+v", stressed)
	}
	neutral := WisdomFor(CommunityWisdom, 3)
	if len(neutral) != 1 || neutral[0].ID != "3" {
		t.Fatalf("unexpected neutral cards: %+v", neutral)
	}
}

func TestDailyTipFollowsSentiment(t *testing.T) {
	t.Parallel()

	if tip := DailyTip(SentimentStressed); !strings.Contains(tip, "4-7-8 breathing") {
		t.Fatalf("unexpected stressed tip: %q", tip)
	}
	if tip := DailyTip(SentimentHappy); !strings.HasPrefix(tip, "Gratitude amplifies joy") {
		t.Fatalf("unexpected happy tip: %q", tip)
	}
	neutral := DailyTip(SentimentNeutral)
	if !strings.HasPrefix(neutral, "Mindful moments matter") {
		t.Fatalf("unexpected neutral tip: %q", neutral)
	}
	if DailyTip("") != neutral {
		t.Fatalf("expected unknown sentiment to get the neutral tip")
	}
}

func TestWisdomForCapsAtThree(t *testing.T) {
	t.Parallel()

	cards := make([]WisdomCard, 0, 5)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		cards = append(cards, WisdomCard{ID: id, Audience: WisdomAudienceAll})
	}
	picked := WisdomFor(cards, 3)
	if len(picked) != 3 || picked[2].ID != "c" {
		t.Fatalf("unexpected picked cards: %+v", picked)
	}
}
