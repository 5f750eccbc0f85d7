package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devask/devask-hub/internal/application/cache"
)

func TestKeysFor_Question(t *testing.T) {
	keys := cache.KeysFor(cache.QuestionMutation("q1", "p1"))

	assert.Equal(t, []string{
		"question_detail_q1",
		"list_all_question_published",
		"answers_question_list_q1",
		"profile_detail_p1",
	}, keys)
}

func TestKeysFor_AnswerEvictsParentQuestion(t *testing.T) {
	keys := cache.KeysFor(cache.AnswerMutation("a1", "q1", "p2"))

	assert.ElementsMatch(t, []string{
		"answers_question_list_q1",
		"question_detail_q1",
		"list_all_question_published",
		"profile_detail_p2",
	}, keys)
}

func TestKeysFor_ArticleAndCredential(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"article_r1", "list_article", "profile_detail_p1"},
		cache.KeysFor(cache.ArticleMutation("r1", "p1")),
	)
	assert.ElementsMatch(t,
		[]string{"credential_c1", "profile_detail_p1"},
		cache.KeysFor(cache.CredentialMutation("c1", "p1")),
	)
}

func TestKeysFor_TechnologyEvictsLists(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"list_all_question_published", "list_article"},
		cache.KeysFor(cache.TechnologyMutation("t1")),
	)
}

func TestKeysFor_Deduplicates(t *testing.T) {
	keys := cache.KeysFor(
		cache.AnswerMutation("a1", "q1", "p2"),
		cache.QuestionMutation("q1", "p1"),
		cache.ProfileMutation("p2"),
	)

	seen := map[string]int{}
	for _, k := range keys {
		seen[k]++
	}
	for k, n := range seen {
		assert.Equal(t, 1, n, k)
	}
	assert.Contains(t, keys, "profile_detail_p1")
	assert.Contains(t, keys, "profile_detail_p2")
}

func TestKeysFor_SkipsEmptyOwner(t *testing.T) {
	keys := cache.KeysFor(cache.QuestionMutation("q1", ""))
	assert.NotContains(t, keys, "profile_detail_")
	assert.Empty(t, cache.KeysFor())
}

func TestBlacklistKey(t *testing.T) {
	assert.Equal(t, "blacklist:abc", cache.BlacklistKey("abc"))
}
