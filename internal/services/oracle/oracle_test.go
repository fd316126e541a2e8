package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/guessword/internal/model"
)

type fakeCompleter struct {
	reply   string
	err     error
	systems []string
	prompts []string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.systems = append(f.systems, system)
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

type OracleSuite struct {
	suite.Suite
	ctx context.Context
}

func TestOracleSuite(t *testing.T) {
	suite.Run(t, new(OracleSuite))
}

func (s *OracleSuite) SetupTest() {
	s.ctx = context.Background()
}

func aiMessage(typ model.MessageType, content string) model.Message {
	return model.Message{Type: typ, Content: content, AuthorID: model.AIPlayerID}
}

// Labels

func (s *OracleSuite) TestCoerceLabel() {
	cases := map[string]string{
		"yes":             "yes",
		"  YES ":          "yes",
		"Probably Not.":   "probably not",
		"\"No\"":          "no",
		"depends!":        "depends",
		"maybe":           FallbackLabel,
		"not relevant":    FallbackLabel,
		"":                FallbackLabel,
		"Yes, it is big.": FallbackLabel,
	}
	for in, want := range cases {
		s.Equal(want, CoerceLabel(in), "input %q", in)
	}
}

func (s *OracleSuite) TestVocabularyHasEightLabels() {
	s.Len(Vocabulary, 8)
	for _, l := range Vocabulary {
		s.Equal(l, CoerceLabel(l))
	}
}

func (s *OracleSuite) TestIsGuess() {
	s.True(IsGuess("guitar"))
	s.False(IsGuess("Is it a guitar?"))
}

// Pattern judge

func (s *OracleSuite) TestPatternJudge() {
	judge := NewPatternJudge()
	cases := []struct {
		question, secret, want string
	}{
		{"Is it alive?", "guitar", LabelNo},
		{"Is it a living thing?", "guitar", LabelNo},
		{"Is it an ANIMAL?", "Elephant", LabelYes},
		{"Can you eat it?", "pizza", LabelYes},
		{"Is it an object?", "guitar", LabelYes},
		{"Is it big?", "volcano", LabelYes},
		{"Does it swim?", "penguin", LabelYes},
		{"Is it blue?", "pizza", LabelUnknown},
	}
	for _, c := range cases {
		got, err := judge.Judge(s.ctx, c.question, c.secret)
		s.Require().NoError(err)
		s.Equal(c.want, got, "%q about %q", c.question, c.secret)
	}
}

func (s *OracleSuite) TestPatternJudgeFirstRuleWins() {
	// "thing" matches the object rule, but "living" comes first
	got, err := NewPatternJudge().Judge(s.ctx, "Is it a living thing?", "computer")
	s.Require().NoError(err)
	s.Equal(LabelNo, got)
}

// Scripted opponent

func (s *OracleSuite) TestScriptedOpponentStartsBroad() {
	move, err := NewScriptedOpponent().NextMove(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal("Is it a living thing?", move)
	s.False(IsGuess(move))
}

func (s *OracleSuite) TestScriptedOpponentSkipsAskedQuestions() {
	history := []model.Message{
		{Type: model.MessageTypeQuestion, Content: "Is it an object?", AuthorID: "p1"},
		aiMessage(model.MessageTypeQuestion, "Is it a living thing?"),
	}
	move, err := NewScriptedOpponent().NextMove(s.ctx, history)
	s.Require().NoError(err)
	// Only the opponent's own questions count
	s.Equal("Is it an object?", move)
}

func (s *OracleSuite) TestScriptedOpponentGuessesAfterEightMoves() {
	var history []model.Message
	for _, q := range ScriptedQuestions[:8] {
		history = append(history, aiMessage(model.MessageTypeQuestion, q))
	}
	opponent := NewScriptedOpponent()

	move, err := opponent.NextMove(s.ctx, history)
	s.Require().NoError(err)
	s.Equal("computer", move)
	s.True(IsGuess(move))

	history = append(history, aiMessage(model.MessageTypeGuess, "Computer"))
	move, err = opponent.NextMove(s.ctx, history)
	s.Require().NoError(err)
	s.Equal("elephant", move)
}

func (s *OracleSuite) TestScriptedOpponentRunsOutOfGuesses() {
	var history []model.Message
	for _, g := range ScriptedGuesses {
		history = append(history, aiMessage(model.MessageTypeGuess, g))
	}
	move, err := NewScriptedOpponent().NextMove(s.ctx, history)
	s.Require().NoError(err)
	s.Equal("mystery", move)
}

func (s *OracleSuite) TestQuestionCoreHandlesShortQuestions() {
	s.Equal(" fly?", questionCore("Can it fly?"))
	s.Equal("a living ", questionCore("Is it a living thing?"))
	s.Equal("hi", questionCore("hi"))
}

// Advisors

func (s *OracleSuite) TestGraduatedAdvisorIndexesByPriorHints() {
	advisor := NewGraduatedAdvisor()
	seen := map[string]bool{}
	for n := 0; n < len(GraduatedQuestions); n++ {
		q, err := advisor.Suggest(s.ctx, HintRequest{PriorHints: make([]string, n)})
		s.Require().NoError(err)
		s.Equal(GraduatedQuestions[n], q)
		s.False(seen[q])
		seen[q] = true
	}

	q, err := advisor.Suggest(s.ctx, HintRequest{PriorHints: make([]string, 50)})
	s.Require().NoError(err)
	s.Equal(GraduatedQuestions[len(GraduatedQuestions)-1], q)
}

func (s *OracleSuite) TestGraduatedQuestionsAreQuestions() {
	for _, q := range GraduatedQuestions {
		s.True(strings.HasSuffix(q, "?"), q)
	}
}

func (s *OracleSuite) TestSafeAdvisorPassesGoodSuggestions() {
	fake := &fakeCompleter{reply: "Does it have strings?"}
	advisor := NewSafeAdvisor(NewLLMAdvisor(fake))

	q, err := advisor.Suggest(s.ctx, HintRequest{SecretWord: "guitar"})
	s.Require().NoError(err)
	s.Equal("Does it have strings?", q)
}

func (s *OracleSuite) TestSafeAdvisorRejectsSecretAndGuesses() {
	for _, reply := range []string{"Is it a Guitar?", "guitar", "It has six strings."} {
		fake := &fakeCompleter{reply: reply}
		advisor := NewSafeAdvisor(NewLLMAdvisor(fake))

		q, err := advisor.Suggest(s.ctx, HintRequest{SecretWord: "guitar", PriorHints: []string{"x"}})
		s.Require().NoError(err)
		s.Equal(GraduatedQuestions[1], q, "reply %q", reply)
	}
}

func (s *OracleSuite) TestSafeAdvisorPropagatesErrors() {
	boom := errors.New("boom")
	advisor := NewSafeAdvisor(NewLLMAdvisor(&fakeCompleter{err: boom}))

	_, err := advisor.Suggest(s.ctx, HintRequest{SecretWord: "guitar"})
	s.ErrorIs(err, boom)
}

func (s *OracleSuite) TestPatternSetNeverLeaksSecret() {
	set := NewPatternSet()
	for _, secret := range []string{"thing", "living", "person", "size"} {
		for n := 0; n < 10; n++ {
			q, err := set.Advisor.Suggest(s.ctx, HintRequest{SecretWord: secret, PriorHints: make([]string, n)})
			s.Require().NoError(err)
			s.NotContains(strings.ToLower(q), secret)
			s.False(IsGuess(q))
		}
	}
}

// LLM oracles

func (s *OracleSuite) TestLLMJudgeCoercesOutput() {
	fake := &fakeCompleter{reply: "Probably Not"}
	label, err := NewLLMJudge(fake).Judge(s.ctx, "Is it alive?", "guitar")
	s.Require().NoError(err)
	s.Equal(LabelProbablyNot, label)
	s.Equal("Is it alive?", fake.prompts[0])
	s.Contains(fake.systems[0], `"guitar"`)
	s.Contains(fake.systems[0], "- probably not")

	fake.reply = "I think so"
	label, err = NewLLMJudge(fake).Judge(s.ctx, "Is it alive?", "guitar")
	s.Require().NoError(err)
	s.Equal(FallbackLabel, label)
}

func (s *OracleSuite) TestLLMOpponent() {
	fake := &fakeCompleter{reply: " \"Is it loud?\" "}
	history := []model.Message{
		{Type: model.MessageTypeQuestion, Content: "Is it alive?", Response: model.StringPtr("no"), AuthorID: "p1"},
	}
	move, err := NewLLMOpponent(fake).NextMove(s.ctx, history)
	s.Require().NoError(err)
	s.Equal("Is it loud?", move)
	s.Contains(fake.systems[0], "Player question: Is it alive? -> no")

	fake.reply = "  "
	_, err = NewLLMOpponent(fake).NextMove(s.ctx, history)
	s.Error(err)
}

func (s *OracleSuite) TestNewSet() {
	set, err := NewSet(KindPattern, nil)
	s.Require().NoError(err)
	s.IsType(&PatternJudge{}, set.Judge)

	_, err = NewSet(KindLLM, nil)
	s.Error(err)

	set, err = NewSet(KindLLM, &fakeCompleter{})
	s.Require().NoError(err)
	s.IsType(&LLMJudge{}, set.Judge)

	_, err = NewSet("magic", nil)
	s.Error(err)
}
