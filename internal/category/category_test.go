package category

import (
	"testing"

	"github.com/scholarboard/hix/internal/researcher"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"Breast Cancer Research", "Oncology & Cancer"},
		{"HIV Vaccine Trials", "Infectious Disease"},
		{"Deep Learning", "Computer Science & AI"},
		{"Quantum Chromodynamics", "Physics & Astronomy"},
		// "allerg" is matched by Immunology before Allergy & Asthma is tried.
		{"Asthma and allergies", "Immunology"},
		{"Qwerty", Default},
		{"", Default},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			if got := Categorize(tt.topic); got != tt.want {
				t.Errorf("Categorize(%q) = %q, want %q", tt.topic, got, tt.want)
			}
		})
	}
}

func TestCategorize_CaseInsensitive(t *testing.T) {
	if Categorize("CARDIAC arrest") != Categorize("cardiac arrest") {
		t.Error("categorization should ignore case")
	}
}

func TestPrimary(t *testing.T) {
	topics := []researcher.Topic{
		{Name: "Myocardial Infarction", Count: 40},
		{Name: "Machine Learning in Healthcare", Count: 12},
	}
	if got := Primary(topics); got != "Cardiovascular" {
		t.Errorf("Primary() = %q, want Cardiovascular", got)
	}
	if got := Primary(nil); got != Default {
		t.Errorf("Primary(nil) = %q, want %q", got, Default)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if names[0] != "Oncology & Cancer" {
		t.Errorf("first category = %q", names[0])
	}
	if names[len(names)-1] != Default {
		t.Errorf("last category = %q, want %q", names[len(names)-1], Default)
	}
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate category %q", n)
		}
		seen[n] = true
	}
}

func TestDistribution(t *testing.T) {
	mapping, counts := Distribution([]string{"Lung Cancer", "Melanoma", "Deep Learning", "Qwerty"})

	if mapping["Melanoma"] != "Oncology & Cancer" {
		t.Errorf("mapping[Melanoma] = %q", mapping["Melanoma"])
	}
	if len(counts) != 3 {
		t.Fatalf("got %d categories, want 3: %+v", len(counts), counts)
	}
	if counts[0].Category != "Oncology & Cancer" || counts[0].Topics != 2 || counts[0].Percent != 50 {
		t.Errorf("counts[0] = %+v", counts[0])
	}
	// Ties are ordered by name.
	if counts[1].Category != "Computer Science & AI" || counts[2].Category != Default {
		t.Errorf("tie order = %q, %q", counts[1].Category, counts[2].Category)
	}
}
