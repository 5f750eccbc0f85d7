// Package query contains read operations (CQRS - Queries).
//
// Обработчики возвращают DTO с json-тегами: они же хранятся в кеше, поэтому
// повторное чтение из Redis даёт тот же ответ, что и чтение из базы.
package query

import (
	"context"

	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/domain/answer"
	"github.com/devask/devask-hub/internal/domain/article"
	"github.com/devask/devask-hub/internal/domain/credential"
	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/domain/question"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/technology"
	"github.com/devask/devask-hub/pkg/logger"
)

// Deps - порты, общие для всех обработчиков запросов.
type Deps struct {
	Profiles     profile.Repository
	Questions    question.Repository
	Answers      answer.Repository
	Articles     article.Repository
	Credentials  credential.Repository
	Technologies technology.Repository
	Ledger       reputation.Ledger

	// Cache - кеш чтения. nil отключает кеширование.
	Cache  *cache.Reader
	Logger *logger.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logger.Default()
	}
	return d
}

// cached читает значение через кеш, если он настроен.
func cached[T any](ctx context.Context, d Deps, key string, load func(context.Context) (T, error)) (T, error) {
	if d.Cache == nil {
		return load(ctx)
	}
	return cache.ReadThrough(ctx, d.Cache, key, load)
}
