package engine

import (
	"context"
	"testing"
	"time"

	"github.com/FocuswithJustin/ChronoVerse/core/canon"
	"github.com/FocuswithJustin/ChronoVerse/core/ref"
	"github.com/FocuswithJustin/ChronoVerse/core/timeslot"
	"github.com/FocuswithJustin/ChronoVerse/internal/source"
	"github.com/FocuswithJustin/ChronoVerse/internal/stats"
	"github.com/FocuswithJustin/ChronoVerse/internal/store"
)

// canned is a deterministic adapter that answers every request.
type canned struct {
	name string
}

func (c canned) Name() string { return c.name }

func (c canned) Fetch(ctx context.Context, r ref.Reference, translation string) (source.Result, error) {
	return source.Result{
		Text:        "text of " + r.String() + " in " + translation,
		Translation: translation,
	}, nil
}

func newTestEngine(t *testing.T, translations ...string) (*Engine, *stats.Collector) {
	t.Helper()
	structure := canon.NewStructure()
	st, err := store.NewStore(t.TempDir(), structure)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	exec := source.NewExecutor(st, time.Second)
	exec.SetDefaultChain([]source.Source{source.NewCache(st), canned{name: "canned"}})

	collector := stats.NewCollector()
	if len(translations) == 0 {
		translations = []string{"kjv", "web"}
	}
	return New(Config{
		Structure:    structure,
		Executor:     exec,
		Stats:        collector,
		Translations: translations,
	}), collector
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 8, 25, hour, minute, 0, 0, time.UTC)
}

func TestCurrent_ExactMatchScenario(t *testing.T) {
	e, _ := newTestEngine(t)

	// 02:16 in 12-hour mode proposes chapter 2 verse 16.
	out := e.Current(context.Background(), at(2, 16), timeslot.Format12, "kjv", "")
	if out.Kind != KindVerse {
		t.Fatalf("Kind = %v; want verse", out.Kind)
	}
	if out.Verse.Reference.Chapter != 2 || out.Verse.Reference.Verse != 16 {
		t.Errorf("Reference = %+v; want chapter 2 verse 16", out.Verse.Reference)
	}
	if out.Verse.Text == "" {
		t.Error("verse text is empty")
	}
	if out.ResolutionID == "" {
		t.Error("missing resolution ID")
	}
}

func TestCurrent_Deterministic(t *testing.T) {
	e, _ := newTestEngine(t)
	now := at(2, 16)

	first := e.Current(context.Background(), now, timeslot.Format12, "kjv", "")
	for i := 0; i < 5; i++ {
		got := e.Current(context.Background(), now, timeslot.Format12, "kjv", "")
		if got.Kind != first.Kind || got.Verse.Reference != first.Verse.Reference ||
			got.Verse.Text != first.Verse.Text {
			t.Fatalf("resolution not deterministic: %+v vs %+v", got.Verse, first.Verse)
		}
	}
}

func TestCurrent_MinuteZeroIsSummary(t *testing.T) {
	e, _ := newTestEngine(t)
	out := e.Current(context.Background(), at(10, 0), timeslot.Format12, "kjv", "")
	if out.Kind != KindSummary {
		t.Fatalf("Kind = %v; minute 0 must yield a summary", out.Kind)
	}
	if out.Summary.Book == "" || out.Summary.Text == "" {
		t.Errorf("Summary = %+v", out.Summary)
	}
}

func TestCurrent_MinuteFiftyPlusIsSummary(t *testing.T) {
	e, _ := newTestEngine(t)
	out := e.Current(context.Background(), at(3, 55), timeslot.Format12, "kjv", "")
	if out.Kind != KindSummary {
		t.Fatalf("Kind = %v; minute >= 50 must yield a summary", out.Kind)
	}
}

func TestCurrent_SummaryStableWithinMinute(t *testing.T) {
	e, _ := newTestEngine(t)
	base := time.Date(2026, 8, 25, 10, 0, 2, 0, time.UTC)

	first := e.Current(context.Background(), base, timeslot.Format12, "kjv", "")
	again := e.Current(context.Background(), base.Add(30*time.Second), timeslot.Format12, "kjv", "")
	if first.Summary.Book != again.Summary.Book {
		t.Errorf("summary book changed within the minute: %q vs %q",
			first.Summary.Book, again.Summary.Book)
	}
}

func TestCurrent_RandomSentinelNeverDownstream(t *testing.T) {
	e, collector := newTestEngine(t, "kjv", "web", "asv")

	for i := 0; i < 20; i++ {
		out := e.Current(context.Background(), at(2, 16), timeslot.Format12, RandomTranslation, "")
		if out.Kind != KindVerse {
			t.Fatalf("Kind = %v", out.Kind)
		}
		if out.Verse.Translation == RandomTranslation {
			t.Fatal("sentinel leaked downstream")
		}
	}

	snap := collector.Snapshot()
	if snap.Translations[RandomTranslation] != 0 {
		t.Error("stats must count concrete translations, not the sentinel")
	}
	total := 0
	for _, code := range []string{"kjv", "web", "asv"} {
		total += snap.Translations[code]
	}
	if total != 20 {
		t.Errorf("concrete translation counts = %d; want 20", total)
	}
}

func TestCurrent_SecondaryTranslation(t *testing.T) {
	e, _ := newTestEngine(t)
	out := e.Current(context.Background(), at(2, 16), timeslot.Format12, "kjv", "web")
	if out.Secondary == nil {
		t.Fatal("secondary fetch missing")
	}
	if out.Secondary.Translation != "web" {
		t.Errorf("secondary translation = %q", out.Secondary.Translation)
	}
	if out.Secondary.Reference != out.Verse.Reference {
		t.Error("secondary must fetch the same reference")
	}

	same := e.Current(context.Background(), at(2, 16), timeslot.Format12, "kjv", "kjv")
	if same.Secondary != nil {
		t.Error("secondary equal to primary should not trigger a second fetch")
	}
}

func TestCurrent_StatsObserved(t *testing.T) {
	e, collector := newTestEngine(t)

	e.Current(context.Background(), at(2, 16), timeslot.Format12, "kjv", "")
	e.Current(context.Background(), at(10, 0), timeslot.Format12, "kjv", "")

	snap := collector.Snapshot()
	if snap.Resolutions != 2 {
		t.Errorf("Resolutions = %d; want 2", snap.Resolutions)
	}
	if snap.Summaries != 1 {
		t.Errorf("Summaries = %d; want 1", snap.Summaries)
	}
}

func TestLookup(t *testing.T) {
	e, _ := newTestEngine(t)
	r := ref.Reference{Book: "John", Chapter: 3, Verse: 16}
	rec := e.Lookup(context.Background(), r, "kjv")
	if rec.Text == "" || rec.Reference != r {
		t.Errorf("Lookup = %+v", rec)
	}
}

func TestCurrent_UnsupportedTranslationDegrades(t *testing.T) {
	structure := canon.NewStructure()
	st, err := store.NewStore(t.TempDir(), structure)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer st.Close()

	// No adapters at all: even then the terminal fallback answers.
	exec := source.NewExecutor(st, time.Second)
	e := New(Config{
		Structure:    structure,
		Executor:     exec,
		Stats:        stats.NewCollector(),
		Translations: []string{"kjv"},
	})

	out := e.Current(context.Background(), at(2, 16), timeslot.Format12, "xyz", "")
	if out.Kind != KindVerse {
		t.Fatalf("Kind = %v", out.Kind)
	}
	if out.Verse.Text == "" || !out.Verse.Degraded {
		t.Errorf("Verse = %+v; want degraded fallback text", out.Verse)
	}
}
