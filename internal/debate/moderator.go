package debate

import (
	"context"
	"fmt"
	"log"
	"strings"
)

const moderatorFactCheckPrompt = `You are the moderator of a stock debate. Fact-check the argument below against
the research data only. Score how well its claims are supported.

Format your response as:
ACCURACY SCORE: <number between 0.0 and 1.0>
FEEDBACK: <what is supported, overstated or wrong>`

const moderatorSummaryPrompt = `You are the moderator of a stock debate. Summarize the round that just ended:
the strongest points on each side and where the advocates directly clashed.
Stay neutral, do not pick a winner.`

// moderatorSummaryConfidence is fixed: the summary restates the transcript
// rather than asserting new claims.
const moderatorSummaryConfidence = 0.9

// Moderator closes each round: it fact-checks the two advocate arguments just
// made, appends a neutral round summary, and owns the round counter.
type Moderator struct {
	oracle     Oracle
	previewLen int
	logger     *log.Logger
}

func NewModerator(oracle Oracle, previewLen int) *Moderator {
	return &Moderator{
		oracle:     oracle,
		previewLen: previewLen,
		logger:     log.New(log.Writer(), "[MOD] ", log.LstdFlags),
	}
}

func (m *Moderator) Name() string { return string(SpeakerModerator) }

// Act fact-checks the last two arguments (one oracle call each), emits the
// round summary, and increments the round exactly once. When the new round
// count reaches the limit it routes to the judge, otherwise back to the bull.
func (m *Moderator) Act(ctx context.Context, st *State) (Delta, error) {
	round := st.Round + 1

	var checks []FactCheck
	for _, arg := range st.LastArguments(2) {
		if arg.Speaker != SpeakerBull && arg.Speaker != SpeakerBear {
			continue
		}
		prompt := fmt.Sprintf("%s\n\n%s ARGUMENT TO FACT-CHECK:\n%s\n",
			RenderResearch(st.Research), strings.ToUpper(string(arg.Speaker)), arg.Content)
		raw, err := m.oracle.Complete(ctx, prompt, moderatorFactCheckPrompt)
		if err != nil {
			return Delta{}, fmt.Errorf("moderator fact-check of %s: %w", arg.Speaker, err)
		}
		fc := ParseFactCheck(raw, arg.Speaker)
		m.logger.Printf("fact-checked %s argument: accuracy %.2f", arg.Speaker, fc.AccuracyScore)
		checks = append(checks, fc)
	}

	summaryInput := fmt.Sprintf("Round %d of the debate on %s just ended.\n\nTRANSCRIPT:\n%s\n",
		round, st.Ticker, RenderHistory(st.Arguments, m.previewLen))
	raw, err := m.oracle.Complete(ctx, summaryInput, moderatorSummaryPrompt)
	if err != nil {
		return Delta{}, fmt.Errorf("moderator round summary: %w", err)
	}
	summary := ParseArgument(raw, SpeakerModerator)
	summary.Confidence = moderatorSummaryConfidence

	next := ActorBull
	if round >= st.MaxRounds {
		next = ActorJudge
	}
	m.logger.Printf("round %d/%d closed, next: %s", round, st.MaxRounds, next)
	return Delta{
		Arguments:  []Argument{summary},
		FactChecks: checks,
		Next:       next,
		Round:      round,
	}, nil
}
