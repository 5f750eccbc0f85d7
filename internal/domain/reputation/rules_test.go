package reputation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devask/devask-hub/internal/domain/shared"
)

func TestLevelFor(t *testing.T) {
	cases := []struct {
		score int
		want  Level
	}{
		{0, LevelBeginner},
		{499, LevelBeginner},
		{500, LevelIntermediate},
		{999, LevelIntermediate},
		{1000, LevelExpert},
		{1999, LevelExpert},
		{2000, LevelElite},
		{25000, LevelElite},
		{-10, LevelBeginner},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelFor(tc.score), "score %d", tc.score)
	}
}

func TestTierPoints(t *testing.T) {
	assert.Equal(t, 100, TierJunior.Points())
	assert.Equal(t, 300, TierMid.Points())
	assert.Equal(t, 500, TierSenior.Points())
	assert.Equal(t, 0, Tier("XX").Points())

	assert.True(t, TierMid.IsRecognized())
	assert.False(t, Tier("").IsRecognized())
}

func TestApplyDelta_FloorsAtZero(t *testing.T) {
	assert.Equal(t, 20, ApplyDelta(0, 20))
	assert.Equal(t, 0, ApplyDelta(10, -20))
	assert.Equal(t, 0, ApplyDelta(0, -500))
	assert.Equal(t, 480, ApplyDelta(500, -20))
}

func TestStanding_WithDeltaRecomputesLevel(t *testing.T) {
	s := NewStanding(490, 0)
	assert.Equal(t, LevelBeginner, s.Level)

	s = s.WithDelta(AcceptedAnswerPoints)
	assert.Equal(t, 510, s.Score)
	assert.Equal(t, LevelIntermediate, s.Level)

	s = s.WithDelta(-1000)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, LevelBeginner, s.Level)
}

func TestStanding_ProfessionalIsCounted(t *testing.T) {
	s := NewStanding(0, 0)
	assert.False(t, s.IsProfessional)

	s = s.WithProfessionalCount(2)
	assert.True(t, s.IsProfessional)

	// Revoking one of two verified credentials keeps the flag.
	s = s.WithProfessionalCount(1)
	assert.True(t, s.IsProfessional)

	s = s.WithProfessionalCount(0)
	assert.False(t, s.IsProfessional)
}

func TestEvaluate_Answers(t *testing.T) {
	t.Run("created awards nothing", func(t *testing.T) {
		out := Evaluate(AnswerCreated{AnswerID: "a1", QuestionID: "q1", AuthorID: "p1"})
		assert.True(t, out.IsNoop())
	})

	t.Run("accepted awards author and solutions question", func(t *testing.T) {
		out := Evaluate(AnswerAccepted{AnswerID: "a1", QuestionID: "q1", AuthorID: "p1"})
		assert.Equal(t, "p1", out.ProfileID)
		assert.Equal(t, 20, out.Delta)
		assert.Equal(t, ReasonAnswerAccepted, out.Reason)
		assert.Equal(t, "q1", out.QuestionID)
		require.NotNil(t, out.Solutioned)
		assert.True(t, *out.Solutioned)
		assert.False(t, out.RecountProfessional)
	})

	t.Run("revoking the accepted answer reverses the award", func(t *testing.T) {
		out := Evaluate(AnswerRevoked{AnswerID: "a1", QuestionID: "q1", AuthorID: "p1", WasAccepted: true})
		assert.Equal(t, -20, out.Delta)
		require.NotNil(t, out.Solutioned)
		assert.False(t, *out.Solutioned)
	})

	t.Run("revoking an unaccepted answer is a no-op", func(t *testing.T) {
		out := Evaluate(AnswerRevoked{AnswerID: "a2", QuestionID: "q1", AuthorID: "p1"})
		assert.True(t, out.IsNoop())
	})

	t.Run("deleting the accepted answer reverses the award", func(t *testing.T) {
		out := Evaluate(AnswerDeleted{AnswerID: "a1", QuestionID: "q1", AuthorID: "p1", WasAccepted: true})
		assert.Equal(t, -20, out.Delta)
		assert.Equal(t, ReasonAnswerDeleted, out.Reason)
		require.NotNil(t, out.Solutioned)
		assert.False(t, *out.Solutioned)
	})

	t.Run("deleting an unaccepted answer leaves the question alone", func(t *testing.T) {
		out := Evaluate(AnswerDeleted{AnswerID: "a2", QuestionID: "q1", AuthorID: "p1"})
		assert.True(t, out.IsNoop())
		assert.Nil(t, out.Solutioned)
	})
}

func TestEvaluate_Articles(t *testing.T) {
	out := Evaluate(ArticleCreated{ArticleID: "ar1", AuthorID: "p1"})
	assert.Equal(t, 20, out.Delta)
	assert.Equal(t, "ar1", out.SubjectID)

	out = Evaluate(ArticleDeleted{ArticleID: "ar1", AuthorID: "p1"})
	assert.Equal(t, -20, out.Delta)
	assert.Nil(t, out.Solutioned)
}

func TestEvaluate_Credentials(t *testing.T) {
	out := Evaluate(CredentialVerified{CredentialID: "c1", ProfileID: "p1", Tier: TierSenior})
	assert.Equal(t, 500, out.Delta)
	assert.True(t, out.RecountProfessional)

	out = Evaluate(CredentialRevoked{CredentialID: "c1", ProfileID: "p1", Tier: TierSenior})
	assert.Equal(t, -500, out.Delta)
	assert.True(t, out.RecountProfessional)

	out = Evaluate(CredentialVerified{CredentialID: "c2", ProfileID: "p1", Tier: Tier("??")})
	assert.Equal(t, 0, out.Delta)
	assert.True(t, out.RecountProfessional)

	out = Evaluate(CredentialDeleted{CredentialID: "c3", ProfileID: "p1", Tier: TierJunior, WasVerified: true})
	assert.Equal(t, -100, out.Delta)
	assert.Equal(t, ReasonCredentialDeleted, out.Reason)

	out = Evaluate(CredentialDeleted{CredentialID: "c4", ProfileID: "p1", Tier: TierJunior})
	assert.True(t, out.IsNoop())
}

func TestAcceptDeleteScenario(t *testing.T) {
	standing := NewStanding(0, 0)
	solutioned := false

	apply := func(tr Transition) {
		out := Evaluate(tr)
		standing = standing.WithDelta(out.Delta)
		if out.Solutioned != nil {
			solutioned = *out.Solutioned
		}
	}

	apply(AnswerCreated{AnswerID: "a1", QuestionID: "q1", AuthorID: "p2"})
	assert.Equal(t, 0, standing.Score)
	assert.False(t, solutioned)

	apply(AnswerAccepted{AnswerID: "a1", QuestionID: "q1", AuthorID: "p2"})
	assert.Equal(t, 20, standing.Score)
	assert.True(t, solutioned)

	apply(AnswerDeleted{AnswerID: "a1", QuestionID: "q1", AuthorID: "p2", WasAccepted: true})
	assert.Equal(t, 0, standing.Score)
	assert.False(t, solutioned)

	// A second reversal never drives the score negative.
	apply(ArticleDeleted{ArticleID: "ar1", AuthorID: "p2"})
	assert.Equal(t, 0, standing.Score)
}

func TestGuards(t *testing.T) {
	assert.NoError(t, CheckAcceptance("a1", ""))
	assert.NoError(t, CheckAcceptance("a1", "a1"))

	err := CheckAcceptance("a2", "a1")
	assert.True(t, errors.Is(err, shared.ErrConflict))

	assert.NoError(t, CheckSubmission(false))
	assert.True(t, shared.IsConflict(CheckSubmission(true)))

	assert.NoError(t, CheckCredentialEdit(false))
	assert.ErrorIs(t, CheckCredentialEdit(true), shared.ErrCredentialVerified)
}
