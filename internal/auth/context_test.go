// ABOUTME: Unit tests for authentication context functions
// ABOUTME: Tests context propagation helpers

package auth

import (
	"context"
	"testing"
)

func TestWithAuth_RoundTrip(t *testing.T) {
	want := &AuthContext{SessionID: "sess-1", AdminID: "1", AdminEmail: "a@b.com"}
	ctx := WithAuth(context.Background(), want)

	got := FromContext(ctx)
	if got != want {
		t.Fatalf("FromContext() = %+v, want %+v", got, want)
	}
}

func TestFromContext_Missing(t *testing.T) {
	if got := FromContext(context.Background()); got != nil {
		t.Errorf("FromContext() = %+v, want nil", got)
	}
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), authContextKey{}, "not-auth")
	if got := FromContext(ctx); got != nil {
		t.Errorf("FromContext() = %+v, want nil", got)
	}
}
