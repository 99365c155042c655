package tone

import (
	"strings"
	"testing"

	"github.com/kalambet/fincoach/internal/profile"
)

func TestAdapt_Student(t *testing.T) {
	in := "You should save $20 a week. It is recommended to keep $1,000 aside."
	want := "You might want to save $20 (that's like 20 cups of coffee! ☕) a week. " +
		"It's a good idea to to keep $1 (that's like 1 cups of coffee! ☕),000 aside."

	if got := Adapt(in, profile.SegmentStudent); got != want {
		t.Errorf("Adapt() =\n%q\nwant\n%q", got, want)
	}
}

func TestAdapt_EveryAmountConverted(t *testing.T) {
	got := Adapt("$5 then $10 then $200", profile.SegmentStudent)
	for _, n := range []string{"5", "10", "200"} {
		if !strings.Contains(got, "$"+n+" (that's like "+n+" cups of coffee! ☕)") {
			t.Errorf("amount $%s not converted: %q", n, got)
		}
	}
	if c := strings.Count(got, "cups of coffee"); c != 3 {
		t.Errorf("conversions = %d, want 3", c)
	}
}

func TestAdapt_NoAmount(t *testing.T) {
	in := "Budget wisely. $ alone stays."
	if got := Adapt(in, profile.SegmentStudent); got != in {
		t.Errorf("Adapt() = %q, want unchanged", got)
	}
}

func TestAdapt_OtherSegmentsUnchanged(t *testing.T) {
	in := "You should invest $500. It is recommended."
	for _, seg := range []profile.Segment{profile.SegmentProfessional, "retiree", ""} {
		if got := Adapt(in, seg); got != in {
			t.Errorf("Adapt(%q) = %q, want identity", seg, got)
		}
	}
}

func TestAdapt_Deterministic(t *testing.T) {
	in := "You should spend $30."
	if Adapt(in, profile.SegmentStudent) != Adapt(in, profile.SegmentStudent) {
		t.Error("Adapt is not deterministic")
	}
}
