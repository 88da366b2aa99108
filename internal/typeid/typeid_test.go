package typeid

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		prefix  string
		wantErr bool
	}{
		{name: "board id", id: NewBoardID(), prefix: PrefixBoard},
		{name: "note id", id: NewNoteID(), prefix: PrefixNote},
		{name: "wrong prefix", id: NewArrowID(), prefix: PrefixImage, wantErr: true},
		{name: "garbage", id: "not an id", prefix: PrefixNote, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id, tt.prefix)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q, %q) error = %v, wantErr %v", tt.id, tt.prefix, err, tt.wantErr)
			}
		})
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewNoteID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
