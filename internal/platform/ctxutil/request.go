package ctxutil

import (
	"context"
	"strings"
)

type requestDataKey struct{}

// RequestData identifies the user a request acts for. There is no authentication;
// the id is taken as given and used to scope every store query.
type RequestData struct {
	UserID string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(Default(ctx), requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// UserID returns the trimmed request user id or "".
func UserID(ctx context.Context) string {
	rd := GetRequestData(ctx)
	if rd == nil {
		return ""
	}
	return strings.TrimSpace(rd.UserID)
}
