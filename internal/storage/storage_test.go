package storage

import "testing"

func TestQuery_Clamp(t *testing.T) {
	cases := []struct {
		name                 string
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{"zero limit", 0, 0, 1, 0},
		{"negative limit", -5, 0, 1, 0},
		{"over max", 1000, 0, MaxQueryLimit, 0},
		{"at max", MaxQueryLimit, 0, MaxQueryLimit, 0},
		{"negative offset", 10, -3, 10, 0},
		{"in range", 50, 20, 50, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := Query{Limit: tc.limit, Offset: tc.offset}
			q.Clamp()
			if q.Limit != tc.wantLimit || q.Offset != tc.wantOffset {
				t.Fatalf("clamped to %d/%d, want %d/%d", q.Limit, q.Offset, tc.wantLimit, tc.wantOffset)
			}
		})
	}
}
