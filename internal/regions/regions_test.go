package regions

import "testing"

func TestClassifyKnownCountries(t *testing.T) {
	cases := []struct {
		country string
		want    string
	}{
		{"Germany", Europe},
		{"Ukraine", Europe},
		{"Czechia", Europe},
		{"India", Asia},
		{"Viet Nam", Asia},
		{"Vietnam", Asia},
		{"Timor-Leste", Asia},
		{"Republic of Korea", Asia},
		{"Nigeria", Africa},
		{"Ivory Coast", Africa},
		{"South Sudan", Africa},
		{"United States of America", Americas},
		{"Bolivia (Plurinational State of)", Americas},
		{"Saint Vincent and the Grenadines", Americas},
	}
	for _, tc := range cases {
		if got := Classify(tc.country); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.country, got, tc.want)
		}
	}
}

func TestClassifyUnmatchedDefaultsToOceania(t *testing.T) {
	// Genuine Oceania countries, name variants, and junk all hit the
	// catch-all; the lookup is exact by design.
	for _, country := range []string{
		"Australia", "New Zealand", "Fiji",
		"USA", "United States", "south africa", "",
		"Democratic Republic of the Congo",
	} {
		if got := Classify(country); got != Oceania {
			t.Errorf("Classify(%q) = %q, want %q", country, got, Oceania)
		}
	}
}

func TestClassifyIsTotal(t *testing.T) {
	valid := map[string]bool{Europe: true, Asia: true, Africa: true, Americas: true, Oceania: true}
	inputs := append([]string{}, europe...)
	inputs = append(inputs, asia...)
	inputs = append(inputs, africa...)
	inputs = append(inputs, americas...)
	inputs = append(inputs, "Wakanda", "\x00", "日本")
	for _, c := range inputs {
		if !valid[Classify(c)] {
			t.Fatalf("Classify(%q) returned out-of-domain label %q", c, Classify(c))
		}
	}
}

func TestWHORegionName(t *testing.T) {
	if got := WHORegionName("SEA"); got != "South-East Asia" {
		t.Errorf("WHORegionName(SEA) = %q", got)
	}
	if got := WHORegionName("EMR"); got != "Eastern Mediterranean" {
		t.Errorf("WHORegionName(EMR) = %q", got)
	}
	// Unknown codes pass through.
	if got := WHORegionName("Europe"); got != "Europe" {
		t.Errorf("WHORegionName(Europe) = %q", got)
	}
}
