package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"강남 파스타 본점", "강남 파스타"},
		{"강남 파스타 지점", "강남 파스타"},
		{"을지다락 강남점", "을지다락 강남"},
		{"서울역점", "서울"}, // trailing 역점 is a branch qualifier
		{"한남 직영점", "한남"},
		{"  Cafe   Onion  ", "cafe onion"},
		{"PASTA HOUSE", "pasta house"},
		{"점심식당 명동", "점심식당 명동"}, // suffix mid-string survives
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeName(c.in), "input %q", c.in)
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{
		"강남 파스타 본점",
		"을지다락   강남점",
		"  MIXED case  지점 ",
		"이태원",
		"",
	}
	for _, in := range inputs {
		once := NormalizeName(in)
		assert.Equal(t, once, NormalizeName(once), "input %q", in)
	}
}
