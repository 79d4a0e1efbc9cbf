package mutate

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/vlogdeck/vlogdeck/internal/domain"
)

func TestRecordViewIsSilent(t *testing.T) {
	f := newFixture(t)
	f.seedVlog(testVlog("v1"))

	if err := f.engine.RecordView(context.Background(), "v1"); err != nil {
		t.Fatalf("view failed: %v", err)
	}
	assert.Equal(t, f.vlog(t, "v1").Views, 1)
	assert.Equal(t, len(f.notes.successes), 0)
	assert.Equal(t, len(f.notes.infos), 0)

	// Failures are silent too: a lost view ping is not worth a toast.
	f.api.err = fmt.Errorf("boom")
	if err := f.engine.RecordView(context.Background(), "v1"); err == nil {
		t.Fatal("expected error")
	}
	assert.Equal(t, len(f.notes.errors), 0)
	assert.Equal(t, f.vlog(t, "v1").Views, 1)
}

func TestRecordViewWorksAnonymously(t *testing.T) {
	f := newFixture(t)
	f.logout()
	f.seedVlog(testVlog("v1"))

	if err := f.engine.RecordView(context.Background(), "v1"); err != nil {
		t.Fatalf("anonymous view failed: %v", err)
	}
	assert.Equal(t, f.api.calls, []string{"view v1"})
	assert.Equal(t, f.vlog(t, "v1").Views, 1)
}

func TestShareRecordsAfterPresenting(t *testing.T) {
	f := newFixture(t)
	f.seedVlog(testVlog("v1"))

	presented := false
	err := f.engine.Share(context.Background(), "v1", func() error {
		presented = true
		return nil
	})
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}

	assert.Equal(t, presented, true)
	assert.Equal(t, f.api.calls, []string{"share v1"})
	assert.Equal(t, f.vlog(t, "v1").Shares, 1)
	assert.Equal(t, f.notes.successes, []string{"Vlog shared!"})
}

func TestShareCancelledRollsBackSilently(t *testing.T) {
	f := newFixture(t)
	f.seedVlog(testVlog("v1"))

	err := f.engine.Share(context.Background(), "v1", func() error {
		return domain.ErrShareCancelled
	})
	assert.Equal(t, err, domain.ErrShareCancelled)

	// No API call, no error toast, count back where it was.
	assert.Equal(t, len(f.api.calls), 0)
	assert.Equal(t, len(f.notes.errors), 0)
	assert.Equal(t, f.vlog(t, "v1").Shares, 0)
}

func TestShareFailureNotifies(t *testing.T) {
	f := newFixture(t)
	f.seedVlog(testVlog("v1"))

	f.api.err = fmt.Errorf("boom")
	if err := f.engine.Share(context.Background(), "v1", nil); err == nil {
		t.Fatal("expected error")
	}
	assert.Equal(t, f.notes.errors, []string{"Failed to share vlog. Please try again."})
	assert.Equal(t, f.vlog(t, "v1").Shares, 0)
}
