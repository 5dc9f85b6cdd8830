package models

import "testing"

func TestParseExecutionAction(t *testing.T) {
	cases := []struct {
		in      string
		want    ExecutionAction
		wantErr bool
	}{
		{"CHECK_IN", ExecutionActionCheckIn, false},
		{"START", ExecutionActionStart, false},
		{"COMPLETE", ExecutionActionComplete, false},
		{"check_in", "", true},
		{"PAUSE", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseExecutionAction(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %s, got %s", tc.in, tc.want, got)
		}
	}
}
