package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProperties(t *testing.T) {
	props := ParseProperties([]byte(`# comment
! also a comment
greeting = Hello
button.cancel:Cancel
empty.value=

=no key
plain line without separator
spaced   =   trimmed value
`))

	assert.Equal(t, map[string]string{
		"greeting":      "Hello",
		"button.cancel": "Cancel",
		"empty.value":   "",
		"spaced":        "trimmed value",
	}, props)
}

func TestAddJSONFallsBackOnBadPayload(t *testing.T) {
	d := NewDocument()
	d.AddJSON("conf/good.json", []byte(`{"title": "Hello"}`))
	d.AddJSON("conf/bad.json", []byte(`{broken`))

	assert.Contains(t, d.JSONFiles, "conf/good.json")
	assert.NotContains(t, d.JSONFiles, "conf/bad.json")
	assert.Equal(t, "{broken", d.OtherTextFiles["conf/bad.json"])
}

func TestWriteDocument(t *testing.T) {
	d := NewDocument()
	d.AddProperties("i18n/app.properties", []byte("greeting=Hello"))
	d.AddText("README.txt", []byte("notes\n"))
	d.ClassStrings["com/example/Ui.class"] = []ClassString{{
		Text:             "Hello",
		Context:          "draw() -> PrintStream.println()",
		Filename:         "com/example/Ui.class",
		Method:           "draw",
		ActualCaller:     "com/example/Ui",
		CalledMethod:     "PrintStream.println",
		CallType:         "virtual_call",
		TranslationKey:   "com/example/Ui.class:PrintStream.println:0:69609650",
		InstructionIndex: 0,
	}}

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, d.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "properties_files")
	assert.Contains(t, decoded, "json_files")
	assert.Contains(t, decoded, "class_strings")
	assert.Contains(t, decoded, "other_text_files")

	var round Document
	require.NoError(t, json.Unmarshal(data, &round))
	require.Len(t, round.ClassStrings["com/example/Ui.class"], 1)
	assert.Equal(t, "Hello", round.ClassStrings["com/example/Ui.class"][0].Text)
	assert.Equal(t, "Hello", round.PropertiesFiles["i18n/app.properties"]["greeting"])
}
