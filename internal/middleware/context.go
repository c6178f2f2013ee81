package middleware

import "context"

type ctxKey int

const (
	userIDKey ctxKey = iota
	roleKey
)

func InjectUser(ctx context.Context, id, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, id)
	return context.WithValue(ctx, roleKey, role)
}

func UserID(ctx context.Context) string {
	v := ctx.Value(userIDKey)
	if v == nil {
		return ""
	}
	return v.(string)
}

func Role(ctx context.Context) string {
	v := ctx.Value(roleKey)
	if v == nil {
		return ""
	}
	return v.(string)
}
