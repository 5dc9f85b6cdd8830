package notify

import "testing"

func TestNormalizePhone_E164(t *testing.T) {
	cases := []struct {
		raw    string
		region string
		want   string
	}{
		{"+14155550100", "US", "+14155550100"},
		{"(415) 555-0100", "US", "+14155550100"},
		{"415-555-0100", "US", "+14155550100"},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.raw, tc.region)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %s, got %s", tc.raw, tc.want, got)
		}
	}
}

func TestNormalizePhone_RejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not a number", "123"} {
		if _, err := NormalizePhone(raw, "US"); err == nil {
			t.Errorf("%q: expected error", raw)
		}
	}
}
