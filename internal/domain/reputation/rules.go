// Package reputation contains the pure rule engine that turns entity state
// transitions into reputation deltas and derived profile flags.
//
// Nothing in this package touches storage. Command handlers describe what
// happened with a Transition value, call Evaluate, and apply the resulting
// Outcome inside the same transaction as the mutation itself.
package reputation

import (
	"github.com/devask/devask-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// Points
// ═══════════════════════════════════════════════════════════════════════════

const (
	// AcceptedAnswerPoints is awarded to the author of an accepted answer.
	AcceptedAnswerPoints = 20
	// ArticlePoints is awarded to the author of a new article.
	ArticlePoints = 20
)

// Tier is the experience tier of a credential, stored as its short code.
type Tier string

const (
	TierJunior Tier = "JR"
	TierMid    Tier = "PL"
	TierSenior Tier = "SR"
)

var tierPoints = map[Tier]int{
	TierJunior: 100,
	TierMid:    300,
	TierSenior: 500,
}

// Points returns the reputation awarded for a verified credential of this
// tier. Unmapped tiers are worth nothing.
func (t Tier) Points() int {
	return tierPoints[t]
}

// IsRecognized reports whether the tier counts towards professional status.
func (t Tier) IsRecognized() bool {
	_, ok := tierPoints[t]
	return ok
}

// ApplyDelta adds delta to score, flooring the result at zero.
func ApplyDelta(score, delta int) int {
	score += delta
	if score < 0 {
		return 0
	}
	return score
}

// IsProfessional derives the professional flag from the number of verified
// credentials with a recognized tier.
func IsProfessional(verifiedRecognized int) bool {
	return verifiedRecognized > 0
}

// ═══════════════════════════════════════════════════════════════════════════
// Levels
// ═══════════════════════════════════════════════════════════════════════════

// Level is the tier label derived from a reputation score.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelExpert       Level = "Expert"
	LevelElite        Level = "Elite"
)

// levelThresholds is ordered from the highest threshold down.
var levelThresholds = []struct {
	min   int
	level Level
}{
	{2000, LevelElite},
	{1000, LevelExpert},
	{500, LevelIntermediate},
	{0, LevelBeginner},
}

// LevelFor returns the highest level whose threshold does not exceed score.
func LevelFor(score int) Level {
	for _, t := range levelThresholds {
		if score >= t.min {
			return t.level
		}
	}
	return LevelBeginner
}

// String returns the level label.
func (l Level) String() string {
	return string(l)
}

// ═══════════════════════════════════════════════════════════════════════════
// Standing
// ═══════════════════════════════════════════════════════════════════════════

// Standing is the derived reputation state of a profile.
type Standing struct {
	Score          int
	Level          Level
	IsProfessional bool
}

// NewStanding builds a consistent standing from a raw score and the count of
// verified recognized credentials.
func NewStanding(score, verifiedRecognized int) Standing {
	if score < 0 {
		score = 0
	}
	return Standing{
		Score:          score,
		Level:          LevelFor(score),
		IsProfessional: IsProfessional(verifiedRecognized),
	}
}

// WithDelta returns the standing after applying delta. The level is
// recomputed on every score change.
func (s Standing) WithDelta(delta int) Standing {
	s.Score = ApplyDelta(s.Score, delta)
	s.Level = LevelFor(s.Score)
	return s
}

// WithProfessionalCount returns the standing with the professional flag
// recounted.
func (s Standing) WithProfessionalCount(verifiedRecognized int) Standing {
	s.IsProfessional = IsProfessional(verifiedRecognized)
	return s
}

// ═══════════════════════════════════════════════════════════════════════════
// Guards
// ═══════════════════════════════════════════════════════════════════════════

// CheckAcceptance rejects accepting answerID while a different answer of the
// same question is accepted. acceptedID is empty when none is.
func CheckAcceptance(answerID, acceptedID string) error {
	if acceptedID != "" && acceptedID != answerID {
		return shared.ErrAnotherAnswerAccepted
	}
	return nil
}

// CheckSubmission rejects new answers on a solutioned question.
func CheckSubmission(questionSolutioned bool) error {
	if questionSolutioned {
		return shared.ErrQuestionSolutioned
	}
	return nil
}

// CheckCredentialEdit rejects ordinary edits of a verified credential.
func CheckCredentialEdit(verified bool) error {
	if verified {
		return shared.ErrCredentialVerified
	}
	return nil
}
