// Package regions maps country names to continental regions and expands WHO
// region codes to display names.
package regions

// Region labels produced by Classify.
const (
	Europe   = "Europe"
	Asia     = "Asia"
	Africa   = "Africa"
	Americas = "Americas"
	// Oceania is the catch-all for countries absent from every list. This
	// mislabels unmatched territories and name variants; kept until the
	// country lists are audited against the source data.
	Oceania = "Oceania"
)

var europe = []string{
	"Switzerland", "Czechia", "Germany", "France", "United Kingdom", "Italy", "Spain",
	"Albania", "Austria", "Belarus", "Belgium", "Bosnia and Herzegovina", "Bulgaria",
	"Croatia", "Denmark", "Estonia", "Finland", "Greece", "Hungary", "Iceland", "Ireland",
	"Latvia", "Lithuania", "Luxembourg", "Malta", "Montenegro", "Netherlands",
	"North Macedonia", "Norway", "Poland", "Portugal", "Romania", "Russia", "Serbia",
	"Slovakia", "Slovenia", "Sweden", "Ukraine",
}

var asia = []string{
	"Republic of Korea", "China", "India", "Japan", "Afghanistan", "Armenia",
	"Azerbaijan", "Bahrain", "Bangladesh", "Bhutan", "Cambodia", "Cyprus", "Georgia",
	"Indonesia", "Iran", "Sri Lanka", "Iraq", "Israel", "Jordan", "Kazakhstan", "Kuwait",
	"Kyrgyzstan", "Laos", "Lebanon", "Malaysia", "Maldives", "Mongolia", "Myanmar",
	"Nepal", "Oman", "Pakistan", "Philippines", "Qatar", "Saudi Arabia", "Singapore",
	"Syria", "Taiwan", "Tajikistan", "Thailand", "Timor-Leste", "Turkmenistan",
	"United Arab Emirates", "Uzbekistan", "Vietnam", "Yemen", "Viet Nam",
}

var africa = []string{
	"South Africa", "Nigeria", "Kenya", "Algeria", "Angola", "Benin", "Botswana",
	"Burkina Faso", "Burundi", "Cabo Verde", "Cameroon", "Central African Republic",
	"Chad", "Comoros", "Congo", "Djibouti", "Egypt", "Equatorial Guinea", "Eritrea",
	"Eswatini", "Ethiopia", "Gabon", "Gambia", "Ghana", "Guinea", "Guinea-Bissau",
	"Ivory Coast", "Lesotho", "Liberia", "Libya", "Madagascar", "Malawi", "Mali",
	"Mauritania", "Mauritius", "Morocco", "Mozambique", "Namibia", "Niger", "Rwanda",
	"Senegal", "Seychelles", "Sierra Leone", "Somalia", "South Sudan", "Sudan",
	"Tanzania", "Togo", "Tunisia", "Uganda", "Zambia", "Zimbabwe",
}

var americas = []string{
	"United States of America", "Brazil", "Canada", "Mexico", "Antigua and Barbuda",
	"Argentina", "Bahamas", "Barbados", "Belize", "Bolivia (Plurinational State of)",
	"Chile", "Colombia", "Costa Rica", "Cuba", "Dominica", "Dominican Republic",
	"Ecuador", "El Salvador", "Grenada", "Guatemala", "Guyana", "Haiti", "Honduras",
	"Jamaica", "Nicaragua", "Panama", "Paraguay", "Peru", "Saint Kitts and Nevis",
	"Saint Lucia", "Saint Vincent and the Grenadines", "Suriname", "Trinidad and Tobago",
	"Uruguay", "Venezuela",
}

var byCountry map[string]string

func init() {
	byCountry = make(map[string]string, len(europe)+len(asia)+len(africa)+len(americas))
	for _, c := range europe {
		byCountry[c] = Europe
	}
	for _, c := range asia {
		byCountry[c] = Asia
	}
	for _, c := range africa {
		byCountry[c] = Africa
	}
	for _, c := range americas {
		byCountry[c] = Americas
	}
}

// Classify returns the region for a country name. Unmatched names map to
// Oceania; the lookup is exact (no normalization).
func Classify(country string) string {
	if r, ok := byCountry[country]; ok {
		return r
	}
	return Oceania
}

// whoRegionNames expands WHO region codes as they appear in the
// g_whoregion column.
var whoRegionNames = map[string]string{
	"AFR": "Africa",
	"AMR": "Americas",
	"EMR": "Eastern Mediterranean",
	"EUR": "Europe",
	"SEA": "South-East Asia",
	"WPR": "Western Pacific",
}

// WHORegionName expands a WHO region code to its display name. Unknown
// codes are returned unchanged.
func WHORegionName(code string) string {
	if n, ok := whoRegionNames[code]; ok {
		return n
	}
	return code
}
