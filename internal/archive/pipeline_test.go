package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rejar/internal/jartest"
	"rejar/internal/translate"
)

func writeJar(t *testing.T, entries ...jartest.Entry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.jar")
	require.NoError(t, os.WriteFile(path, jartest.BuildJar(entries...), 0o644))
	return path
}

func readJar(t *testing.T, path string) map[string][]byte {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	out := make(map[string][]byte)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			out[f.Name] = nil
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = data
	}
	return out
}

func cancelButton(t *testing.T, className string) []byte {
	t.Helper()
	b := jartest.NewClass(className)
	idx := b.String("Cancel")
	ref := b.MethodRef("javax/swing/JButton", "setText", "(Ljava/lang/String;)V")
	hi, lo := jartest.U16(ref)
	b.AddMethod("build", "()V", []byte{
		0x12, byte(idx), // ldc "Cancel"
		0xb6, hi, lo,    // invokevirtual setText
		0xb1,            // return
	})
	return b.Bytes()
}

func TestTranslateFallbackAcrossClasses(t *testing.T) {
	jar := writeJar(t,
		jartest.Entry{Name: "com/example/Toolbar.class", Data: cancelButton(t, "com/example/Toolbar")},
		jartest.Entry{Name: "com/example/Wizard.class", Data: cancelButton(t, "com/example/Wizard")},
		jartest.Entry{Name: "META-INF/MANIFEST.MF", Data: []byte("Manifest-Version: 1.0\n")},
	)
	out := filepath.Join(t.TempDir(), "out.jar")

	// No keys: the shared literal rewrites everywhere via the text fallback.
	store := translate.NewStore([]translate.Record{
		{Original: "Cancel", Translation: "取消"},
	})
	p := &Pipeline{Logger: zap.NewNop()}
	stats, err := p.Translate(jar, out, store)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesProcessed)
	assert.Equal(t, 2, stats.FilesModified)
	assert.Equal(t, 2, stats.TotalReplacements)
	assert.Equal(t, 0, stats.KeyBasedReplacements)
	assert.Equal(t, 2, stats.FallbackReplacements)

	entries := readJar(t, out)
	require.Len(t, entries, 3)
	assert.Contains(t, string(entries["com/example/Toolbar.class"]), "取消")
	assert.Contains(t, string(entries["com/example/Wizard.class"]), "取消")
	assert.Equal(t, []byte("Manifest-Version: 1.0\n"), entries["META-INF/MANIFEST.MF"])
}

func TestTranslateCorruptClassPassthrough(t *testing.T) {
	corrupt := []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00} // truncated
	jar := writeJar(t,
		jartest.Entry{Name: "Bad.class", Data: corrupt},
		jartest.Entry{Name: "com/example/Toolbar.class", Data: cancelButton(t, "com/example/Toolbar")},
	)
	out := filepath.Join(t.TempDir(), "out.jar")

	store := translate.NewStore([]translate.Record{
		{Original: "Cancel", Translation: "取消"},
	})
	p := &Pipeline{Logger: zap.NewNop()}
	stats, err := p.Translate(jar, out, store)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesProcessed)
	assert.Equal(t, 1, stats.FilesModified)

	entries := readJar(t, out)
	assert.Equal(t, corrupt, entries["Bad.class"], "corrupt entry must survive byte-identical")
	assert.Contains(t, string(entries["com/example/Toolbar.class"]), "取消")
}

func TestTranslateEmptyStoreLeavesClassesIdentical(t *testing.T) {
	original := cancelButton(t, "com/example/Toolbar")
	jar := writeJar(t, jartest.Entry{Name: "com/example/Toolbar.class", Data: original})
	out := filepath.Join(t.TempDir(), "out.jar")

	p := &Pipeline{Logger: zap.NewNop()}
	stats, err := p.Translate(jar, out, translate.NewStore(nil))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FilesProcessed)
	assert.Equal(t, 0, stats.FilesModified)
	assert.Equal(t, 0, stats.TotalReplacements)

	entries := readJar(t, out)
	assert.True(t, bytes.Equal(original, entries["com/example/Toolbar.class"]))
}

func TestTranslateMissingJar(t *testing.T) {
	p := &Pipeline{Logger: zap.NewNop()}
	out := filepath.Join(t.TempDir(), "out.jar")

	_, err := p.Translate(filepath.Join(t.TempDir(), "missing.jar"), out, translate.NewStore(nil))
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "open", ioErr.Op)
	assert.NoFileExists(t, out)
}

func TestExtractReport(t *testing.T) {
	jar := writeJar(t,
		jartest.Entry{Name: "com/example/Toolbar.class", Data: cancelButton(t, "com/example/Toolbar")},
		jartest.Entry{Name: "i18n/app.properties", Data: []byte("greeting=Hello\n")},
		jartest.Entry{Name: "conf/ui.json", Data: []byte(`{"title": "Welcome"}`)},
		jartest.Entry{Name: "docs/notes.txt", Data: []byte("release notes\n")},
		jartest.Entry{Name: "assets/logo.png", Data: []byte{0x89, 0x50, 0x4e, 0x47}},
		jartest.Entry{Name: "Bad.class", Data: []byte{0x00, 0x01}},
	)

	p := &Pipeline{Logger: zap.NewNop()}
	doc, stats, err := p.Extract(jar)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesProcessed)

	require.Len(t, doc.ClassStrings["com/example/Toolbar.class"], 1)
	cs := doc.ClassStrings["com/example/Toolbar.class"][0]
	assert.Equal(t, "Cancel", cs.Text)
	assert.Equal(t, "build() -> JButton.setText()", cs.Context)
	assert.Equal(t, "JButton.setText", cs.CalledMethod)

	assert.Equal(t, map[string]string{"greeting": "Hello"}, doc.PropertiesFiles["i18n/app.properties"])
	assert.Contains(t, doc.JSONFiles, "conf/ui.json")
	assert.Equal(t, "release notes\n", doc.OtherTextFiles["docs/notes.txt"])
	assert.NotContains(t, doc.OtherTextFiles, "assets/logo.png")
	assert.NotContains(t, doc.ClassStrings, "Bad.class")
}
