package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikePattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, "%go%", likePattern("go"))
	assert.Equal(t, `%100\%\_done\\%`, likePattern(`100%_done\`))
}

func TestWhereBuilder_NumbersPlaceholders(t *testing.T) {
	var w whereBuilder
	w.add("q.is_published")
	w.add("q.created_at >= ? AND q.created_at < ?", 1, 2)
	w.add("(q.title ILIKE ? OR q.content ILIKE ?)", "%a%", "%a%")

	assert.Equal(t,
		" WHERE q.is_published AND q.created_at >= $1 AND q.created_at < $2 AND (q.title ILIKE $3 OR q.content ILIKE $4)",
		w.sql(),
	)
	assert.Equal(t, "$5", w.next(20))
	assert.Len(t, w.args, 5)
}

func TestWhereBuilder_Empty(t *testing.T) {
	var w whereBuilder
	assert.Equal(t, "", w.sql())
	assert.Equal(t, "$1", w.next(10))
}

func TestConfig_DSN(t *testing.T) {
	cfg := DefaultConfig()
	assert.Contains(t, cfg.DSN(), "host=localhost port=5432 dbname=devask")

	cfg.URL = "postgres://u:p@db:5432/devask"
	assert.Equal(t, "postgres://u:p@db:5432/devask", cfg.DSN())
}

func TestGetMigrations_Ordered(t *testing.T) {
	migrations := GetMigrations()
	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.UpSQL)
		assert.NotEmpty(t, m.DownSQL)
	}
	assert.Contains(t, migrations[1].UpSQL, "uq_answers_one_accepted")
}
