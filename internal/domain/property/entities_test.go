package property

import "testing"

func TestTypeTag(t *testing.T) {
	cases := map[string]string{
		"residential":   "RES",
		"commercial":    "COM",
		"mixed":         "MIX",
		"industrial":    "IND",
		"institutional": "INS",
		"vacant_land":   "VAC",
		"houseboat":     "OTH",
		"":              "OTH",
	}
	for in, want := range cases {
		if got := TypeTag(in); got != want {
			t.Fatalf("TypeTag(%q) = %q, want %q", in, got, want)
		}
	}
}
