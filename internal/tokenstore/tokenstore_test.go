package tokenstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDisabledWithoutRedis(t *testing.T) {
	store := New("", "", "secret", time.Hour)

	if store.Enabled() {
		t.Fatal("store should be disabled without a Redis address")
	}

	if _, err := store.Issue(context.Background(), "a@b.com"); !errors.Is(err, ErrDisabled) {
		t.Errorf("Issue err = %v, want ErrDisabled", err)
	}
	if _, err := store.Verify(context.Background(), "token"); !errors.Is(err, ErrDisabled) {
		t.Errorf("Verify err = %v, want ErrDisabled", err)
	}
	if _, err := store.Consume(context.Background(), "token"); !errors.Is(err, ErrDisabled) {
		t.Errorf("Consume err = %v, want ErrDisabled", err)
	}
}
