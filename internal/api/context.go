package api

import (
	"context"

	"trekbooking/pkg/authtoken"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

func WithIdentity(ctx context.Context, id *authtoken.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

func IdentityFromContext(ctx context.Context) *authtoken.Identity {
	v := ctx.Value(ctxKeyIdentity)
	if v == nil {
		return nil
	}
	id, _ := v.(*authtoken.Identity)
	return id
}
