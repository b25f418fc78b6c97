package debate

import (
	"context"
	"fmt"
	"log"
	"strings"
)

const judgeSystemPrompt = `You are the judge of a completed stock debate. Weigh the bull and bear cases,
the moderator's fact-checks, and the research data, then deliver a final
investment verdict.

Format your response as:
RECOMMENDATION: <STRONG BUY, BUY, HOLD, SELL or STRONG SELL>
CONFIDENCE: <number between 0.0 and 1.0>
BULL SCORE: <0-100>
BEAR SCORE: <0-100>
SUMMARY: <your reasoning>
KEY FACTORS:
- <up to five factors that decided the verdict>
RISKS:
- <up to three risks to this call>`

// Judge delivers the terminal verdict. It speaks once, adds nothing to the
// transcript, and always ends the session.
type Judge struct {
	oracle     Oracle
	previewLen int
	logger     *log.Logger
}

func NewJudge(oracle Oracle, previewLen int) *Judge {
	return &Judge{
		oracle:     oracle,
		previewLen: previewLen,
		logger:     log.New(log.Writer(), "[JUDGE] ", log.LstdFlags),
	}
}

func (j *Judge) Name() string { return string(SpeakerJudge) }

func (j *Judge) Act(ctx context.Context, st *State) (Delta, error) {
	prompt := j.buildPrompt(st)
	raw, err := j.oracle.Complete(ctx, prompt, judgeSystemPrompt)
	if err != nil {
		return Delta{}, fmt.Errorf("judge verdict: %w", err)
	}
	v := ParseVerdict(raw)
	j.logger.Printf("verdict: %s (confidence %.2f, bull %.0f / bear %.0f)",
		v.Recommendation, v.Confidence, v.BullScore, v.BearScore)
	return Delta{
		Verdict: &v,
		Next:    ActorEnd,
		Round:   st.Round,
	}, nil
}

func (j *Judge) buildPrompt(st *State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The debate on %s has concluded after %d round(s).\n", st.Ticker, st.Round)
	if st.Question != "" {
		fmt.Fprintf(&b, "Question under debate: %s\n", st.Question)
	}
	b.WriteString("\n")
	b.WriteString(RenderResearch(st.Research))
	b.WriteString("\n\nFULL TRANSCRIPT:\n")
	b.WriteString(RenderHistory(st.Arguments, j.previewLen))
	if fc := RenderFactChecks(st.FactChecks); fc != "" {
		b.WriteString("\n\nMODERATOR FACT-CHECKS:\n")
		b.WriteString(fc)
	}
	b.WriteString("\n")
	return b.String()
}
