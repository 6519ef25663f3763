// Package chat answers free-text questions about an asset snapshot, either
// through a hosted model or a canned keyword matcher.
package chat

import (
	"context"

	"go.uber.org/zap"

	"github.com/ejjays/assets-management/models"
)

// Advisor turns a question plus the caller's asset snapshot into markdown.
// Implementations keep no conversation state.
type Advisor interface {
	Advise(ctx context.Context, message string, assets []models.Asset) (string, error)
}

// FallbackAdvisor asks Primary first and answers from Secondary when Primary
// is missing or fails.
type FallbackAdvisor struct {
	Primary   Advisor
	Secondary Advisor
	Log       *zap.Logger
}

func (f *FallbackAdvisor) Advise(ctx context.Context, message string, assets []models.Asset) (string, error) {
	if f.Primary != nil {
		text, err := f.Primary.Advise(ctx, message, assets)
		if err == nil {
			return text, nil
		}
		if f.Log != nil {
			f.Log.Warn("hosted model failed, using keyword answers", zap.Error(err))
		}
	}
	return f.Secondary.Advise(ctx, message, assets)
}
