package crisis

import "testing"

func TestDetectCrisisPhrases(t *testing.T) {
	d := MustDetector(DefaultPatterns())

	positives := []string{
		"I want to kill myself",
		"i've been thinking about suicide",
		"I feel suicidal",
		"I just want to end it all",
		"I've started self-harm again",
		"self harm is on my mind",
		"I keep cutting",
		"i want to die",
		"I don't want to live anymore",
		"I don’t want to live",
		"i do not want to live",
		"sometimes I think about hurting myself",
		"everyone would be better off dead without me",
	}
	for _, input := range positives {
		if !d.Detect(input) {
			t.Fatalf("expected crisis detection for %q", input)
		}
	}
}

func TestDetectIgnoresSafeText(t *testing.T) {
	d := MustDetector(DefaultPatterns())

	negatives := []string{
		"",
		"I feel sad and lonely today",
		"work has been killing me lately",
		"I cut my finger while cooking",
		"the movie ending was sad",
	}
	for _, input := range negatives {
		if d.Detect(input) {
			t.Fatalf("unexpected crisis detection for %q", input)
		}
	}
}

func TestNewDetectorRejectsBadPattern(t *testing.T) {
	if _, err := NewDetector([]string{"("}); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}
