package cache

// Entity names the kind of record a mutation touched.
type Entity string

const (
	EntityQuestion   Entity = "question"
	EntityAnswer     Entity = "answer"
	EntityArticle    Entity = "article"
	EntityCredential Entity = "credential"
	EntityProfile    Entity = "profile"
	EntityTechnology Entity = "technology"
)

// Mutation describes a create, update or delete of one record. The policy
// does not care which of the three happened: every mutation evicts the same
// keys.
type Mutation struct {
	Entity Entity
	ID     string
	// OwnerID is the owning profile, whose detail view embeds counters and
	// credentials.
	OwnerID string
	// QuestionID is the parent question of an answer.
	QuestionID string
}

// QuestionMutation builds a Mutation for a question.
func QuestionMutation(id, ownerID string) Mutation {
	return Mutation{Entity: EntityQuestion, ID: id, OwnerID: ownerID}
}

// AnswerMutation builds a Mutation for an answer.
func AnswerMutation(id, questionID, authorID string) Mutation {
	return Mutation{Entity: EntityAnswer, ID: id, QuestionID: questionID, OwnerID: authorID}
}

// ArticleMutation builds a Mutation for an article.
func ArticleMutation(id, authorID string) Mutation {
	return Mutation{Entity: EntityArticle, ID: id, OwnerID: authorID}
}

// CredentialMutation builds a Mutation for a credential.
func CredentialMutation(id, profileID string) Mutation {
	return Mutation{Entity: EntityCredential, ID: id, OwnerID: profileID}
}

// ProfileMutation builds a Mutation for a profile.
func ProfileMutation(id string) Mutation {
	return Mutation{Entity: EntityProfile, ID: id}
}

// TechnologyMutation builds a Mutation for a technology tag.
func TechnologyMutation(id string) Mutation {
	return Mutation{Entity: EntityTechnology, ID: id}
}

// KeysFor returns every cache key that could hold a stale copy of the
// mutated records: their detail keys and every list that could contain
// them. Keys are deduplicated and returned in first-seen order.
func KeysFor(mutations ...Mutation) []string {
	var keys []string
	seen := make(map[string]struct{})
	add := func(k string) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	owner := func(id string) {
		if id != "" {
			add(ProfileDetailKey(id))
		}
	}

	for _, m := range mutations {
		switch m.Entity {
		case EntityQuestion:
			add(QuestionDetailKey(m.ID))
			add(PublishedQuestionsKey)
			add(QuestionAnswersKey(m.ID))
			owner(m.OwnerID)

		case EntityAnswer:
			// The question's solutioned flag is shown in its detail and in
			// the published list.
			add(QuestionAnswersKey(m.QuestionID))
			add(QuestionDetailKey(m.QuestionID))
			add(PublishedQuestionsKey)
			owner(m.OwnerID)

		case EntityArticle:
			add(ArticleDetailKey(m.ID))
			add(ArticleListKey)
			owner(m.OwnerID)

		case EntityCredential:
			add(CredentialKey(m.ID))
			owner(m.OwnerID)

		case EntityProfile:
			owner(m.ID)

		case EntityTechnology:
			// Tags are embedded in every list entry.
			add(PublishedQuestionsKey)
			add(ArticleListKey)
		}
	}
	return keys
}
