package hints

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcherPrecedence(t *testing.T) {
	m := Matcher{
		P("first", `amount (\d+)`),
		P("second", `(\d+)`),
	}
	v, name, ok := m.Find("the amount 42 and 7")
	assert.True(t, ok)
	assert.Equal(t, "42", v)
	assert.Equal(t, "first", name)

	v, name, ok = m.Find("just 7")
	assert.True(t, ok)
	assert.Equal(t, "7", v)
	assert.Equal(t, "second", name)
}

func TestMatcherGroups(t *testing.T) {
	m := Matcher{P("alt", `(?:a=(\w+)|b=(\w+))`)}
	v, ok := m.Match("b=beta")
	assert.True(t, ok)
	assert.Equal(t, "beta", v)

	whole := Matcher{P("plain", `\s*hello\s*`)}
	v, ok = whole.Match("say hello there")
	assert.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestMatcherNoMatch(t *testing.T) {
	v, ok := Matcher{P("x", `zzz`)}.Match("nothing here")
	assert.False(t, ok)
	assert.Empty(t, v)

	_, ok = Matcher(nil).Match("anything")
	assert.False(t, ok)
}

func TestPatternsAreCaseInsensitive(t *testing.T) {
	v, ok := Matcher{P("margin", `Margin\s*[:=]?\s*([0-9.]+)`)}.Match("MARGIN: 2.5")
	assert.True(t, ok)
	assert.Equal(t, "2.5", v)
}
