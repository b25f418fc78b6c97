package debate

import (
	"context"
	"fmt"
	"log"
	"strings"
)

const bullSystemPrompt = `You are the bull advocate in a structured stock debate. You argue the strongest
honest case FOR investing in the stock, grounded in the research data you are
given. Rebut the bear's latest argument directly. Never invent numbers.

Format your response as:
ARGUMENT: <your full argument>
EVIDENCE: <one cited data point per line>
CONFIDENCE: <number between 0.0 and 1.0>`

const bearSystemPrompt = `You are the bear advocate in a structured stock debate. You argue the strongest
honest case AGAINST investing in the stock, grounded in the research data you
are given. Rebut the bull's latest argument directly. Never invent numbers.

Format your response as:
ARGUMENT: <your full argument>
EVIDENCE: <one cited data point per line>
CONFIDENCE: <number between 0.0 and 1.0>`

// Advocate argues one side of the debate. The bull and the bear are the same
// participant with a different stance and opponent.
type Advocate struct {
	speaker    Speaker
	opponent   Speaker
	next       Actor
	system     string
	oracle     Oracle
	previewLen int
	logger     *log.Logger
}

// NewBull returns the advocate arguing for the stock. It routes to the bear.
func NewBull(oracle Oracle, previewLen int) *Advocate {
	return &Advocate{
		speaker:    SpeakerBull,
		opponent:   SpeakerBear,
		next:       ActorBear,
		system:     bullSystemPrompt,
		oracle:     oracle,
		previewLen: previewLen,
		logger:     log.New(log.Writer(), "[BULL] ", log.LstdFlags),
	}
}

// NewBear returns the advocate arguing against the stock. It routes to the
// moderator.
func NewBear(oracle Oracle, previewLen int) *Advocate {
	return &Advocate{
		speaker:    SpeakerBear,
		opponent:   SpeakerBull,
		next:       ActorModerator,
		system:     bearSystemPrompt,
		oracle:     oracle,
		previewLen: previewLen,
		logger:     log.New(log.Writer(), "[BEAR] ", log.LstdFlags),
	}
}

func (a *Advocate) Name() string { return string(a.speaker) }

// Act produces one advocate argument. If the round limit has already been
// reached the advocate still argues, then defers to the judge instead of the
// usual next actor; in the normal topology the moderator routes to the judge
// first, so that path only matters when the advocate is invoked out of band.
func (a *Advocate) Act(ctx context.Context, st *State) (Delta, error) {
	prompt := a.buildPrompt(st)
	raw, err := a.oracle.Complete(ctx, prompt, a.system)
	if err != nil {
		return Delta{}, fmt.Errorf("%s argument generation: %w", a.speaker, err)
	}
	arg := ParseArgument(raw, a.speaker)
	a.logger.Printf("round %d argument produced (confidence %.2f, %d evidence lines)", st.Round, arg.Confidence, len(arg.Evidence))

	next := a.next
	if st.Round >= st.MaxRounds {
		a.logger.Printf("round limit reached (%d/%d), deferring to judge", st.Round, st.MaxRounds)
		next = ActorJudge
	}
	return Delta{
		Arguments: []Argument{arg},
		Next:      next,
		Round:     st.Round,
	}, nil
}

func (a *Advocate) buildPrompt(st *State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Debate round %d of %d on %s.\n", st.Round+1, st.MaxRounds, st.Ticker)
	if st.Question != "" {
		fmt.Fprintf(&b, "Question under debate: %s\n", st.Question)
	}
	b.WriteString("\n")
	b.WriteString(RenderResearch(st.Research))
	b.WriteString("\n")

	if len(st.Arguments) > 0 {
		b.WriteString("\nDEBATE SO FAR:\n")
		b.WriteString(RenderHistory(st.Arguments, a.previewLen))
		b.WriteString("\n")
	}
	if opp := st.LastBySpeaker(a.opponent); opp != nil {
		fmt.Fprintf(&b, "\nOPPONENT'S LATEST ARGUMENT (rebut this directly):\n%s\n", opp.Content)
	}
	if fb := a.ownFeedback(st); fb != "" {
		fmt.Fprintf(&b, "\nMODERATOR FEEDBACK ON YOUR EARLIER ARGUMENTS:\n%s\n", fb)
	}
	return b.String()
}

func (a *Advocate) ownFeedback(st *State) string {
	var own []FactCheck
	for _, c := range st.FactChecks {
		if c.Subject == a.speaker {
			own = append(own, c)
		}
	}
	return RenderFactChecks(own)
}
