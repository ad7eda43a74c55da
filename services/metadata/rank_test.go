package metadata

import (
	"testing"

	"reelcache/models"
)

func TestTitleScoreExactMatch(t *testing.T) {
	if got := titleScore("Alpha", "alpha"); got != 1.0 {
		t.Fatalf("expected 1.0 for normalized exact match, got %f", got)
	}
}

func TestTitleScoreNormalizesPunctuation(t *testing.T) {
	if got := titleScore("WALL·E", "wall e"); got != 1.0 {
		t.Fatalf("expected punctuation-insensitive match, got %f", got)
	}
}

func TestTitleScoreContainmentBeatsDistance(t *testing.T) {
	contained := titleScore("Alpha Centauri", "alpha")
	distant := titleScore("Omega", "alpha")
	if contained <= distant {
		t.Fatalf("containment score %f should beat edit-distance score %f", contained, distant)
	}
}

func TestSortByRelevancePrefersCloserTitles(t *testing.T) {
	records := []models.MediaRecord{
		{ID: "1", Title: "The Alphabet Conspiracy"},
		{ID: "2", Title: "Alpha"},
		{ID: "3", Title: "Ralph Breaks the Internet"},
	}
	sortByRelevance(records, "alpha")
	if records[0].ID != "2" {
		t.Fatalf("expected exact title first, got %q", records[0].Title)
	}
}

func TestSortByRelevanceStableOnTies(t *testing.T) {
	records := []models.MediaRecord{
		{ID: "a", Title: "Same Title"},
		{ID: "b", Title: "Same Title"},
	}
	sortByRelevance(records, "same title")
	if records[0].ID != "a" || records[1].ID != "b" {
		t.Fatalf("tie order changed: %s, %s", records[0].ID, records[1].ID)
	}
}
