package slot

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorLog_Disabled(t *testing.T) {
	log := newErrorLog(0)
	if log != nil {
		t.Fatal("expected nil log for size 0")
	}

	// Nil receivers are safe.
	log.push(errors.New("dropped"))
	log.clear()
	if log.all() != nil {
		t.Error("expected nil history from disabled log")
	}
}

func TestErrorLog_PushAndAll(t *testing.T) {
	log := newErrorLog(3)

	first := errors.New("first")
	second := errors.New("second")
	log.push(first)
	log.push(second)

	all := log.all()
	if len(all) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(all))
	}
	if !errors.Is(all[0], first) || !errors.Is(all[1], second) {
		t.Errorf("expected oldest first, got %v", all)
	}
}

func TestErrorLog_EvictsOldest(t *testing.T) {
	log := newErrorLog(2)

	for i := 1; i <= 5; i++ {
		log.push(fmt.Errorf("err-%d", i))
	}

	all := log.all()
	if len(all) != 2 {
		t.Fatalf("expected 2 errors retained, got %d", len(all))
	}
	if all[0].Error() != "err-4" || all[1].Error() != "err-5" {
		t.Errorf("expected [err-4 err-5], got %v", all)
	}
}

func TestErrorLog_Clear(t *testing.T) {
	log := newErrorLog(2)
	log.push(errors.New("stale"))
	log.clear()

	if log.all() != nil {
		t.Error("expected empty history after clear")
	}
}

func TestErrorLog_AllReturnsCopy(t *testing.T) {
	log := newErrorLog(2)
	log.push(errors.New("kept"))

	all := log.all()
	all[0] = errors.New("mutated")

	if log.all()[0].Error() != "kept" {
		t.Error("expected internal history unaffected by caller mutation")
	}
}
