package shuffleplan

import "testing"

func TestNewCoalescedMappingValidates(t *testing.T) {
	cases := []struct {
		name         string
		preShuffle   uint32
		startIndices []uint32
		wantErr      bool
	}{
		{"valid", 10, []uint32{0, 3, 7}, false},
		{"zero pre-shuffle count", 0, []uint32{0}, true},
		{"empty start indices", 10, nil, true},
		{"does not start at zero", 10, []uint32{1, 5}, true},
		{"not strictly increasing", 10, []uint32{0, 3, 3}, true},
		{"decreasing", 10, []uint32{0, 5, 3}, true},
		{"entry at or above P", 10, []uint32{0, 10}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCoalescedMapping(tc.preShuffle, tc.startIndices)
			if (err != nil) != tc.wantErr {
				t.Fatalf("NewCoalescedMapping(%d, %v) error = %v, wantErr %v", tc.preShuffle, tc.startIndices, err, tc.wantErr)
			}
		})
	}
}

func TestCoalescedMappingGetPostFor(t *testing.T) {
	m, err := NewCoalescedMapping(10, []uint32{0, 3, 7})
	if err != nil {
		t.Fatalf("NewCoalescedMapping() error = %v", err)
	}
	cases := []struct {
		pre      uint32
		wantPost uint32
		wantOK   bool
	}{
		{0, 0, true},
		{2, 0, true},
		{3, 1, true},
		{6, 1, true},
		{7, 2, true},
		{9, 2, true},
		{10, 0, false},
		{100, 0, false},
	}
	for _, tc := range cases {
		post, ok := m.GetPostFor(tc.pre)
		if ok != tc.wantOK || (ok && post != tc.wantPost) {
			t.Fatalf("GetPostFor(%d) = (%d, %v), want (%d, %v)", tc.pre, post, ok, tc.wantPost, tc.wantOK)
		}
	}
}

func TestCoalescedMappingAccessors(t *testing.T) {
	m, err := NewCoalescedMapping(10, []uint32{0, 3, 7})
	if err != nil {
		t.Fatalf("NewCoalescedMapping() error = %v", err)
	}
	if m.NumPostPartitions() != 3 {
		t.Fatalf("NumPostPartitions() = %d, want 3", m.NumPostPartitions())
	}
	if m.PreShuffleCount() != 10 {
		t.Fatalf("PreShuffleCount() = %d, want 10", m.PreShuffleCount())
	}
}
