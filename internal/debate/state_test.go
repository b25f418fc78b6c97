package debate

import "testing"

func TestNewState(t *testing.T) {
	st := New("NVDA", "is the valuation sustainable", 3)
	if st.ID == "" {
		t.Fatal("state must get an id")
	}
	if st.Next != ActorResearch {
		t.Fatalf("next = %q, want research", st.Next)
	}
	if st.Round != 0 || st.MaxRounds != 3 {
		t.Fatalf("rounds = %d/%d", st.Round, st.MaxRounds)
	}
}

func TestNewStateDefaultsQuestion(t *testing.T) {
	st := New("nvda", "", 3)
	if st.Question != "Should we buy or sell NVDA?" {
		t.Fatalf("question = %q, want templated default", st.Question)
	}
	st = New("NVDA", "   ", 3)
	if st.Question != "Should we buy or sell NVDA?" {
		t.Fatalf("question = %q, blank input must also default", st.Question)
	}
	st = New("NVDA", "is the valuation sustainable", 3)
	if st.Question != "is the valuation sustainable" {
		t.Fatalf("question = %q, explicit question must be kept", st.Question)
	}
}

func TestNewStateFloorsRounds(t *testing.T) {
	if st := New("NVDA", "", 0); st.MaxRounds != 1 {
		t.Fatalf("max rounds = %d, want floored to 1", st.MaxRounds)
	}
}

func TestApplyMergesAdditively(t *testing.T) {
	st := New("AAPL", "", 2)
	st.Apply(Delta{
		Arguments: []Argument{{Speaker: SpeakerBull, Content: "a"}},
		Errors:    []string{"research sentiment: boom"},
		Next:      ActorBear,
		Round:     0,
	})
	st.Apply(Delta{
		Arguments:  []Argument{{Speaker: SpeakerBear, Content: "b"}},
		FactChecks: []FactCheck{{Subject: SpeakerBull, AccuracyScore: 0.5}},
		Next:       ActorModerator,
		Round:      0,
	})
	if len(st.Arguments) != 2 || len(st.FactChecks) != 1 || len(st.Errors) != 1 {
		t.Fatalf("merge lost records: %d args, %d checks, %d errors",
			len(st.Arguments), len(st.FactChecks), len(st.Errors))
	}
	if st.Next != ActorModerator {
		t.Fatalf("next = %q, scalars must overwrite", st.Next)
	}
	v := &Verdict{Recommendation: Hold}
	st.Apply(Delta{Verdict: v, Next: ActorEnd, Round: 1})
	if st.Verdict != v || st.Round != 1 {
		t.Fatal("verdict and round not applied")
	}
	// a delta without a verdict must not clear the existing one
	st.Apply(Delta{Next: ActorEnd, Round: 1})
	if st.Verdict == nil {
		t.Fatal("verdict cleared by empty delta")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	st := New("TSLA", "", 1)
	st.Apply(Delta{Arguments: []Argument{{Speaker: SpeakerBull, Content: "original"}}, Next: ActorBear})
	snap := st.Snapshot()
	snap.Arguments[0].Content = "mutated"
	snap.Arguments = append(snap.Arguments, Argument{Speaker: SpeakerBear})
	if st.Arguments[0].Content != "original" {
		t.Fatal("snapshot mutation leaked into the owned state")
	}
	if len(st.Arguments) != 1 {
		t.Fatal("snapshot append leaked into the owned state")
	}
}

func TestLastHelpers(t *testing.T) {
	st := New("MSFT", "", 2)
	st.Apply(Delta{Arguments: []Argument{
		{Speaker: SpeakerBull, Content: "b1"},
		{Speaker: SpeakerBear, Content: "r1"},
		{Speaker: SpeakerModerator, Content: "m1"},
		{Speaker: SpeakerBull, Content: "b2"},
	}, Next: ActorBear})

	last := st.LastArguments(2)
	if len(last) != 2 || last[0].Content != "m1" || last[1].Content != "b2" {
		t.Fatalf("last two = %v", last)
	}
	if got := st.LastBySpeaker(SpeakerBull); got == nil || got.Content != "b2" {
		t.Fatalf("last bull = %v", got)
	}
	if got := st.LastBySpeaker(SpeakerJudge); got != nil {
		t.Fatalf("last judge = %v, want nil", got)
	}
	if got := st.LastArguments(10); len(got) != 4 {
		t.Fatalf("oversized window = %d entries", len(got))
	}
}

func TestExportRecord(t *testing.T) {
	st := New("AMD", "buy the dip?", 1)
	st.Apply(Delta{Arguments: []Argument{
		{Speaker: SpeakerBull, Content: "case for", Confidence: 0.8, Evidence: []string{"x"}},
		{Speaker: SpeakerBear, Content: "case against", Confidence: 0.6},
	}, Next: ActorModerator})
	st.Apply(Delta{Verdict: &Verdict{Recommendation: Buy}, Next: ActorEnd, Round: 1})

	rec := st.Export()
	if rec.Ticker != "AMD" || rec.Question != "buy the dip?" {
		t.Fatalf("header = %q %q", rec.Ticker, rec.Question)
	}
	if rec.Verdict == nil || rec.Verdict.Recommendation != Buy {
		t.Fatal("verdict missing from export")
	}
	if len(rec.Arguments) != 2 {
		t.Fatalf("arguments = %d", len(rec.Arguments))
	}
	if rec.Arguments[0].Speaker != SpeakerBull || rec.Arguments[0].Content != "case for" {
		t.Fatalf("argument[0] = %+v", rec.Arguments[0])
	}
}
