package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func cell(t *testing.T, inner string) *html.Node {
	t.Helper()

	root, err := Parse(`<html><body><div id="cell">` + inner + `</div></body></html>`)
	require.NoError(t, err)

	n := ByID(root, "cell")
	require.NotNil(t, n)
	return n
}

func TestLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"single break", "A<br>B", []string{"A", "B"}},
		{"double break", "A<br><br>B", []string{"A", "B"}},
		{"tail after break", "<br>tail-text", []string{"tail-text"}},
		{"empty", "", []string{}},
		{"only breaks", "<br/><br/>", []string{}},
		{"nbsp", "&nbsp;쌀밥&nbsp;<br>&nbsp;", []string{"쌀밥"}},
		{"trim", "  잡곡밥  <br>\t미역국 ", []string{"잡곡밥", "미역국"}},
		{"inline child text and tail", "쌀밥<span>(국내산)</span> 외<br>김치", []string{"쌀밥(국내산) 외", "김치"}},
		{"source newline splits", "배추김치\n  깍두기", []string{"배추김치", "깍두기"}},
		{"uppercase br", "A<BR>B", []string{"A", "B"}},
		{"comment skipped but tail kept", "A<!-- x -->B", []string{"AB"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Lines(cell(t, tt.input)))
		})
	}
}

func TestLinesShallowWalk(t *testing.T) {
	// only the leading text of a nested element is collected
	lines := Lines(cell(t, `<p>밥<br>국</p>김치`))
	assert.Equal(t, []string{"밥김치"}, lines)
}

func TestLinesNil(t *testing.T) {
	assert.Equal(t, []string{}, Lines(nil))
}

func TestNormalizeSpace(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  교직원   식당 ", "교직원 식당"},
		{" 중식 ", "중식"},
		{"a\n\tb", "a b"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSpace(tt.input))
		})
	}
}
