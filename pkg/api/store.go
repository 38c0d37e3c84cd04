package api

import (
	"context"

	"github.com/goliatone/go-pubtemplate/pkg/model"
)

// Store is the set of template operations the API exposes. Client and
// CachedStore implement it; so does testsupport.MemoryStore.
type Store interface {
	CreateTemplate(ctx context.Context, doc model.Template) (int64, error)
	UpdateTemplate(ctx context.Context, id int64, doc model.Template) error
	DeleteTemplate(ctx context.Context, id int64) error
	ListTemplates(ctx context.Context, ownerID int64) ([]model.Template, error)
	GetTemplate(ctx context.Context, id int64) (model.Template, error)
}
