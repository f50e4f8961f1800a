package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserVisible(t *testing.T) {
	visible := []string{
		"Hello world!",
		"Cancel",
		"Save failed, retry?",
		"THIS IS A SHOUTED SENTENCE",
		"取消操作",
		"  padded but real  ",
	}
	for _, s := range visible {
		assert.True(t, UserVisible(s), "expected %q to be user visible", s)
	}

	invisible := []string{
		"",
		"ab",
		"OK", // too short even if a user could see it
		"com.example.widgets",
		"Ljava/lang/String;",
		"path/to/resource",
		"C:\\Users\\someone",
		"12345",
		"getName",
		"ButtonFactory",
		"MAX_VALUE",
		"snake_case_name",
		"(I)V",
		"[Ljava.lang.Object;",
	}
	for _, s := range invisible {
		assert.False(t, UserVisible(s), "expected %q to be filtered", s)
	}
}

func TestIsCamelCase(t *testing.T) {
	assert.True(t, isCamelCase("getName"))
	assert.True(t, isCamelCase("ButtonFactory"))
	assert.False(t, isCamelCase("Cancel"))
	assert.False(t, isCamelCase("two words"))
	assert.False(t, isCamelCase("lowercase"))
}
