package cancellation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/wyattjouan/stagehand/pkg/cancellation"
	"github.com/wyattjouan/stagehand/pkg/domain"
)

type fakeLoader struct {
	aborts int
}

func (f *fakeLoader) Abort() { f.aborts++ }

func TestToken_CancelTwice(t *testing.T) {
	tok := cancellation.New(context.Background())

	if err := tok.Cancel(); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if err := tok.Cancel(); !errors.Is(err, domain.ErrAlreadyCancelled) {
		t.Errorf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestToken_BindAfterCancel(t *testing.T) {
	tok := cancellation.New(context.Background())
	if err := tok.Cancel(); err != nil {
		t.Fatal(err)
	}

	if err := tok.Bind(&fakeLoader{}); !errors.Is(err, domain.ErrTokenInactive) {
		t.Errorf("expected ErrTokenInactive, got %v", err)
	}
}

func TestToken_CancelForwardsAbort(t *testing.T) {
	tok := cancellation.New(context.Background())
	loader := &fakeLoader{}
	if err := tok.Bind(loader); err != nil {
		t.Fatal(err)
	}

	if err := tok.Cancel(); err != nil {
		t.Fatal(err)
	}
	if loader.aborts != 1 {
		t.Errorf("expected 1 abort, got %d", loader.aborts)
	}
	if tok.Context().Err() == nil {
		t.Error("token context should be cancelled")
	}
}

func TestToken_SupersededCancelStillAborts(t *testing.T) {
	tok := cancellation.New(context.Background())
	loader := &fakeLoader{}
	if err := tok.Bind(loader); err != nil {
		t.Fatal(err)
	}

	tok.Supersede()
	if tok.Active() {
		t.Error("superseded token should not be active")
	}
	if loader.aborts != 1 {
		t.Fatalf("supersede should abort the bound loader, got %d aborts", loader.aborts)
	}

	// Explicit cancel of a superseded token is not a misuse.
	if err := tok.Cancel(); err != nil {
		t.Errorf("cancelling a superseded token failed: %v", err)
	}
	if err := tok.Cancel(); !errors.Is(err, domain.ErrAlreadyCancelled) {
		t.Errorf("second cancel should fail, got %v", err)
	}
}

func TestToken_SupersedeIdempotent(t *testing.T) {
	tok := cancellation.New(context.Background())
	loader := &fakeLoader{}
	if err := tok.Bind(loader); err != nil {
		t.Fatal(err)
	}

	tok.Supersede()
	tok.Supersede()
	if loader.aborts != 1 {
		t.Errorf("expected a single abort, got %d", loader.aborts)
	}
}

func TestToken_BindAfterSupersede(t *testing.T) {
	tok := cancellation.New(context.Background())
	tok.Supersede()

	if err := tok.Bind(&fakeLoader{}); !errors.Is(err, domain.ErrTokenInactive) {
		t.Errorf("expected ErrTokenInactive, got %v", err)
	}
}
