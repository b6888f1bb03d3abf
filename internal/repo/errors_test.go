package repo

import (
	"errors"
	"testing"
)

func TestNotFoundErrorUnwrapsToSentinel(t *testing.T) {
	err := notFound("chain", "c-42")

	if !errors.Is(err, ErrNotFound) {
		t.Fatal("NotFoundError must match ErrNotFound via errors.Is")
	}

	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatal("expected *NotFoundError")
	}
	if nfe.Resource != "chain" || nfe.ID != "c-42" {
		t.Errorf("resource/id: got %s/%s", nfe.Resource, nfe.ID)
	}
	if got := err.Error(); got != "chain c-42: not found" {
		t.Errorf("message: got %q", got)
	}
}
