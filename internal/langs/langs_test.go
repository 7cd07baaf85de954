package langs

import "testing"

func TestTableLoads(t *testing.T) {
	if err := Err(); err != nil {
		t.Fatalf("embedded table failed to load: %v", err)
	}
	if len(All()) != 13 {
		t.Errorf("expected 13 languages, got %d", len(All()))
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		code, want string
	}{
		{"en", "English"},
		{"ZH", "Chinese"},
		{"tr", "Turkish"},
		{"xx", "xx"},
	}
	for _, tt := range tests {
		if got := Name(tt.code); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestPopular(t *testing.T) {
	want := []string{"en", "es", "fr", "de", "zh", "ja", "ru", "ar"}
	got := Popular()
	if len(got) != len(want) {
		t.Fatalf("expected %d popular languages, got %d", len(want), len(got))
	}
	for i, l := range got {
		if l.Code != want[i] {
			t.Errorf("popular[%d] = %q, want %q", i, l.Code, want[i])
		}
	}
	if !Known("ko") || Known("klingon") {
		t.Error("Known returned unexpected result")
	}
}
