package request

import (
	"context"
	"time"

	"github.com/jinzhu/gorm"

	"github.com/Shubhamkahar196/CodeFixer/internal/shared/logutil"
	"github.com/Shubhamkahar196/CodeFixer/pkg/models"
)

type Context interface {
	RequestStartedAt() time.Time
	Logger() logutil.Log
}

type BaseContext struct {
	Ctx  context.Context
	Log  logutil.Log
	Lctx logutil.Context
	DB   *gorm.DB

	StartedAt time.Time
}

func (ctx BaseContext) RequestStartedAt() time.Time {
	return ctx.StartedAt
}

func (ctx BaseContext) Logger() logutil.Log {
	return ctx.Log
}

type AnonymousContext struct {
	BaseContext
}

// AuthorizedContext carries the identity verified by the auth layer.
// The engine trusts it and never re-checks credentials.
type AuthorizedContext struct {
	BaseContext

	User *models.User
}

func (ctx *AuthorizedContext) ToAnonymousContext() *AnonymousContext {
	return &AnonymousContext{
		BaseContext: ctx.BaseContext,
	}
}
