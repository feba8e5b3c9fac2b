package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClue(t *testing.T) {
	assert.Equal(t, "Basic: a-e V:2", Clue("apple"))
	assert.Equal(t, "Basic: a-e V:2", Clue("  Apple  "))
	assert.Equal(t, "Basic: a-a V:1", Clue("a"))
	assert.Equal(t, "N/A (empty word)", Clue("   "))
}

func TestFirstWord(t *testing.T) {
	assert.Equal(t, "look", FirstWord("look up to"))
	assert.Equal(t, "don't", FirstWord("don't!"))
	assert.Equal(t, "well-known", FirstWord("  well-known fact"))
	assert.Equal(t, "word", FirstWord("word"))
	assert.Equal(t, "", FirstWord("  "))
}
