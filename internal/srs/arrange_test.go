package srs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewItems(texts ...string) []ViewItem {
	items := make([]ViewItem, len(texts))
	for i, t := range texts {
		items[i] = ViewItem{Text: t, Status: StatusActive}
	}
	return items
}

func texts(items []ViewItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestArrangeLexical(t *testing.T) {
	items := viewItems("pear", "Apple", "banana")

	page, pageNum, total := Arrange(items, OrderLexical, false, 25, 1)
	assert.Equal(t, []string{"Apple", "banana", "pear"}, texts(page))
	assert.Equal(t, 1, pageNum)
	assert.Equal(t, 1, total)

	// reverse=true yields the exact reverse sequence.
	rev, _, _ := Arrange(items, OrderLexical, true, 25, 1)
	assert.Equal(t, []string{"pear", "banana", "Apple"}, texts(rev))

	// Input untouched.
	assert.Equal(t, []string{"pear", "Apple", "banana"}, texts(items))
}

func TestArrangeEase(t *testing.T) {
	// Length first, vowel count second: "dry" (3,0) < "cat" (3,1) < "eerie" (5,4).
	items := viewItems("eerie", "cat", "dry")

	page, _, _ := Arrange(items, OrderEase, false, 25, 1)
	assert.Equal(t, []string{"dry", "cat", "eerie"}, texts(page))

	page, _, _ = Arrange(items, OrderEase, true, 25, 1)
	assert.Equal(t, []string{"eerie", "cat", "dry"}, texts(page))
}

func TestArrangeReverseIsExactReverse(t *testing.T) {
	// "Apple" and "apple" tie under case-insensitive lexical ordering; the
	// reversed view must still be the exact reverse of the forward one.
	items := viewItems("Apple", "apple", "pear")

	fwd, _, _ := Arrange(items, OrderLexical, false, 25, 1)
	rev, _, _ := Arrange(items, OrderLexical, true, 25, 1)
	require.Len(t, rev, len(fwd))
	for i := range fwd {
		assert.Equal(t, fwd[len(fwd)-1-i].Text, rev[i].Text)
	}

	// Same property for ease ties ("cat"/"dog": equal length and vowel count).
	items = viewItems("cat", "dog", "eerie")
	fwd, _, _ = Arrange(items, OrderEase, false, 25, 1)
	rev, _, _ = Arrange(items, OrderEase, true, 25, 1)
	for i := range fwd {
		assert.Equal(t, fwd[len(fwd)-1-i].Text, rev[i].Text)
	}
}

func TestArrangePaging(t *testing.T) {
	items := viewItems("a", "b", "c", "d", "e")

	page, pageNum, total := Arrange(items, OrderLexical, false, 2, 2)
	assert.Equal(t, []string{"c", "d"}, texts(page))
	assert.Equal(t, 2, pageNum)
	assert.Equal(t, 3, total)

	// Out-of-range pages clamp instead of erroring.
	page, pageNum, _ = Arrange(items, OrderLexical, false, 2, 99)
	assert.Equal(t, []string{"e"}, texts(page))
	assert.Equal(t, 3, pageNum)

	page, pageNum, _ = Arrange(items, OrderLexical, false, 2, 0)
	assert.Equal(t, []string{"a", "b"}, texts(page))
	assert.Equal(t, 1, pageNum)
}

func TestArrangeEmpty(t *testing.T) {
	page, pageNum, total := Arrange(nil, OrderLexical, false, 25, 1)
	require.Empty(t, page)
	assert.Equal(t, 1, pageNum)
	assert.Equal(t, 1, total)
}

func TestCountVowels(t *testing.T) {
	assert.Equal(t, 0, CountVowels("rhythm"))
	assert.Equal(t, 2, CountVowels("apple"))
	assert.Equal(t, 4, CountVowels("Eerie"))
}
