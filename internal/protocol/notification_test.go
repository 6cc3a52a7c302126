package protocol

import (
	"strings"
	"testing"
)

func TestNotificationText(t *testing.T) {
	cases := []struct {
		n    Notification
		want string
	}{
		{Warning(6, 2), "magnitude 6 earthquake in 2 day(s)"},
		{Warning(3, 0), "later today"},
		{Foreshock(3), "faint tremor"},
		{Foreshock(4), "Something big"},
		{Foreshock(7), "major earthquake"},
		{Complete(8, 1), "1 magnitude 8 earthquake(s)"},
	}
	for _, tc := range cases {
		if got := tc.n.Text(); !strings.Contains(got, tc.want) {
			t.Fatalf("%+v: text %q does not contain %q", tc.n, got, tc.want)
		}
	}
	if got := (Notification{Type: "bogus"}).Text(); got != "" {
		t.Fatalf("unknown type rendered %q", got)
	}
}

func TestDecodeBase(t *testing.T) {
	m, err := DecodeBase([]byte(`{"type":"POS","x":1,"y":2,"z":3}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Type != TypePos {
		t.Fatalf("type=%q", m.Type)
	}
}
