package cache

// Key names shared with every deployment of the API. Changing one orphans
// the entries written under the old name until their TTL expires.
const (
	PublishedQuestionsKey = "list_all_question_published"
	ArticleListKey        = "list_article"

	questionDetailPrefix  = "question_detail_"
	questionAnswersPrefix = "answers_question_list_"
	articleDetailPrefix   = "article_"
	profileDetailPrefix   = "profile_detail_"
	credentialPrefix      = "credential_"
	blacklistPrefix       = "blacklist:"
)

// QuestionDetailKey caches a published question.
func QuestionDetailKey(id string) string {
	return questionDetailPrefix + id
}

// QuestionAnswersKey caches the answers of a question.
func QuestionAnswersKey(questionID string) string {
	return questionAnswersPrefix + questionID
}

// ArticleDetailKey caches an article.
func ArticleDetailKey(id string) string {
	return articleDetailPrefix + id
}

// ProfileDetailKey caches a profile with its stats and credentials.
func ProfileDetailKey(id string) string {
	return profileDetailPrefix + id
}

// CredentialKey caches a credential.
func CredentialKey(id string) string {
	return credentialPrefix + id
}

// BlacklistKey marks a logged-out token by its jti.
func BlacklistKey(jti string) string {
	return blacklistPrefix + jti
}
