package audit

import (
	"context"
	"strings"
)

type ctxKey string

const clientInfoKey ctxKey = "audit_client_info"

type ClientInfo struct {
	IP        string
	UserAgent string
}

// WithClientInfo attaches the caller's network identity to ctx so that
// events recorded further down the call chain carry it.
func WithClientInfo(ctx context.Context, ip string, userAgent string) context.Context {
	return context.WithValue(ctx, clientInfoKey, ClientInfo{
		IP:        strings.TrimSpace(ip),
		UserAgent: strings.TrimSpace(userAgent),
	})
}

func clientInfoFromContext(ctx context.Context) ClientInfo {
	if ctx == nil {
		return ClientInfo{}
	}
	if info, ok := ctx.Value(clientInfoKey).(ClientInfo); ok {
		return info
	}
	return ClientInfo{}
}
