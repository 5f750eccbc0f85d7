package reputation

// Transition describes a single entity state change that may affect
// reputation. The set of implementations is closed.
type Transition interface {
	transition()
}

// AnswerCreated records a new answer. It never awards points.
type AnswerCreated struct {
	AnswerID   string
	QuestionID string
	AuthorID   string
}

// AnswerAccepted records the question owner accepting an answer.
type AnswerAccepted struct {
	AnswerID   string
	QuestionID string
	AuthorID   string
}

// AnswerRevoked records the question owner withdrawing an acceptance.
// WasAccepted is false when the answer was not the accepted one, which makes
// the revocation a no-op.
type AnswerRevoked struct {
	AnswerID    string
	QuestionID  string
	AuthorID    string
	WasAccepted bool
}

// AnswerDeleted records the removal of an answer.
type AnswerDeleted struct {
	AnswerID    string
	QuestionID  string
	AuthorID    string
	WasAccepted bool
}

// ArticleCreated records a new article.
type ArticleCreated struct {
	ArticleID string
	AuthorID  string
}

// ArticleDeleted records the removal of an article.
type ArticleDeleted struct {
	ArticleID string
	AuthorID  string
}

// CredentialVerified records an administrator verifying a credential.
type CredentialVerified struct {
	CredentialID string
	ProfileID    string
	Tier         Tier
}

// CredentialRevoked records an administrator withdrawing a verification.
type CredentialRevoked struct {
	CredentialID string
	ProfileID    string
	Tier         Tier
}

// CredentialDeleted records the removal of a credential.
type CredentialDeleted struct {
	CredentialID string
	ProfileID    string
	Tier         Tier
	WasVerified  bool
}

func (AnswerCreated) transition()      {}
func (AnswerAccepted) transition()     {}
func (AnswerRevoked) transition()      {}
func (AnswerDeleted) transition()      {}
func (ArticleCreated) transition()     {}
func (ArticleDeleted) transition()     {}
func (CredentialVerified) transition() {}
func (CredentialRevoked) transition()  {}
func (CredentialDeleted) transition()  {}

// Reason labels a reputation change in the ledger.
type Reason string

const (
	ReasonAnswerAccepted     Reason = "answer_accepted"
	ReasonAnswerRevoked      Reason = "answer_revoked"
	ReasonAnswerDeleted      Reason = "answer_deleted"
	ReasonArticleCreated     Reason = "article_created"
	ReasonArticleDeleted     Reason = "article_deleted"
	ReasonCredentialVerified Reason = "credential_verified"
	ReasonCredentialRevoked  Reason = "credential_revoked"
	ReasonCredentialDeleted  Reason = "credential_deleted"
)

// Outcome is what a transition asks the caller to apply.
type Outcome struct {
	// ProfileID is the profile whose standing changes. Empty when nothing
	// changes.
	ProfileID string

	// Delta is added to the score and floored at zero.
	Delta int

	Reason    Reason
	SubjectID string

	// QuestionID and Solutioned describe a change of the question's
	// solutioned flag. Solutioned is nil when the flag is untouched.
	QuestionID string
	Solutioned *bool

	// RecountProfessional asks for is_professional to be recomputed by
	// counting verified recognized credentials.
	RecountProfessional bool
}

// IsNoop reports whether the outcome changes nothing.
func (o Outcome) IsNoop() bool {
	return o.Delta == 0 && o.Solutioned == nil && !o.RecountProfessional
}

// Evaluate maps a transition to its outcome.
func Evaluate(t Transition) Outcome {
	switch t := t.(type) {
	case AnswerCreated:
		return Outcome{}

	case AnswerAccepted:
		return Outcome{
			ProfileID:  t.AuthorID,
			Delta:      AcceptedAnswerPoints,
			Reason:     ReasonAnswerAccepted,
			SubjectID:  t.AnswerID,
			QuestionID: t.QuestionID,
			Solutioned: flag(true),
		}

	case AnswerRevoked:
		if !t.WasAccepted {
			return Outcome{}
		}
		return Outcome{
			ProfileID:  t.AuthorID,
			Delta:      -AcceptedAnswerPoints,
			Reason:     ReasonAnswerRevoked,
			SubjectID:  t.AnswerID,
			QuestionID: t.QuestionID,
			Solutioned: flag(false),
		}

	case AnswerDeleted:
		if !t.WasAccepted {
			return Outcome{}
		}
		return Outcome{
			ProfileID:  t.AuthorID,
			Delta:      -AcceptedAnswerPoints,
			Reason:     ReasonAnswerDeleted,
			SubjectID:  t.AnswerID,
			QuestionID: t.QuestionID,
			Solutioned: flag(false),
		}

	case ArticleCreated:
		return Outcome{
			ProfileID: t.AuthorID,
			Delta:     ArticlePoints,
			Reason:    ReasonArticleCreated,
			SubjectID: t.ArticleID,
		}

	case ArticleDeleted:
		return Outcome{
			ProfileID: t.AuthorID,
			Delta:     -ArticlePoints,
			Reason:    ReasonArticleDeleted,
			SubjectID: t.ArticleID,
		}

	case CredentialVerified:
		return Outcome{
			ProfileID:           t.ProfileID,
			Delta:               t.Tier.Points(),
			Reason:              ReasonCredentialVerified,
			SubjectID:           t.CredentialID,
			RecountProfessional: true,
		}

	case CredentialRevoked:
		return Outcome{
			ProfileID:           t.ProfileID,
			Delta:               -t.Tier.Points(),
			Reason:              ReasonCredentialRevoked,
			SubjectID:           t.CredentialID,
			RecountProfessional: true,
		}

	case CredentialDeleted:
		if !t.WasVerified {
			return Outcome{}
		}
		return Outcome{
			ProfileID:           t.ProfileID,
			Delta:               -t.Tier.Points(),
			Reason:              ReasonCredentialDeleted,
			SubjectID:           t.CredentialID,
			RecountProfessional: true,
		}
	}
	return Outcome{}
}

func flag(v bool) *bool {
	return &v
}
