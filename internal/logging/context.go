package logging

import "context"

type contextKey string

const (
	ctxKeyRunID  contextKey = "run_id"
	ctxKeyAction contextKey = "action"
	ctxKeyEntity contextKey = "entity"
	ctxKeyRow    contextKey = "row"
)

// ContextWithRunID tags ctx with the id of the current import run.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRunID, id)
}

// ContextWithAction tags ctx with the command being executed.
func ContextWithAction(ctx context.Context, action string) context.Context {
	return context.WithValue(ctx, ctxKeyAction, action)
}

// ContextWithEntity tags ctx with the entity being imported.
func ContextWithEntity(ctx context.Context, entity string) context.Context {
	return context.WithValue(ctx, ctxKeyEntity, entity)
}

// ContextWithRow tags ctx with the 1-based spreadsheet row number.
func ContextWithRow(ctx context.Context, row int) context.Context {
	return context.WithValue(ctx, ctxKeyRow, row)
}

// RunID extracts the run id from ctx.
func RunID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRunID).(string); ok {
		return v
	}
	return ""
}
