package actorctx

import (
	"context"
	"testing"
)

func TestUserIDRoundTrip(t *testing.T) {
	if _, ok := UserIDFrom(context.Background()); ok {
		t.Fatalf("empty context should carry no actor")
	}

	if _, ok := UserIDFrom(WithUserID(context.Background(), "")); ok {
		t.Fatalf("empty id should not count as an actor")
	}

	id, ok := UserIDFrom(WithUserID(context.Background(), "u-1"))
	if !ok || id != "u-1" {
		t.Fatalf("got (%q, %v), want (u-1, true)", id, ok)
	}
}

func TestRequestIDIndependentOfUser(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")

	if _, ok := UserIDFrom(ctx); ok {
		t.Fatalf("request id must not read back as a user")
	}

	ctx = WithUserID(ctx, "u-1")
	rid, ok := RequestIDFrom(ctx)
	if !ok || rid != "req-1" {
		t.Fatalf("got (%q, %v), want (req-1, true)", rid, ok)
	}
}
