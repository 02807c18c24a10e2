package errorsx

import "testing"

func TestWrapAndReason(t *testing.T) {
	err := Wrap(assertErr{}, ReasonGeneration)
	if Reason(err) != ReasonGeneration {
		t.Fatalf("expected reason %s, got %s", ReasonGeneration, Reason(err))
	}
	if !HasReason(err, ReasonGeneration) {
		t.Fatalf("expected HasReason true")
	}
}

func TestWrapPreservesExistingReason(t *testing.T) {
	first := Wrap(assertErr{}, ReasonRecognition)
	second := Wrap(first, ReasonGeneration)
	if Reason(second) != ReasonRecognition {
		t.Fatalf("expected reason preserved, got %s", Reason(second))
	}
}

func TestRecoverable(t *testing.T) {
	if !Recoverable(Wrap(assertErr{}, ReasonSynthesis)) {
		t.Fatalf("expected synthesis failure recoverable")
	}
	if Recoverable(Wrap(assertErr{}, ReasonConfiguration)) {
		t.Fatalf("expected configuration failure not recoverable")
	}
	if Recoverable(nil) {
		t.Fatalf("expected nil not recoverable")
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
