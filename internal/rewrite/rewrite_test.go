package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rejar/internal/classfile"
	"rejar/internal/jartest"
	"rejar/internal/translate"
)

// buildGreeter assembles a class whose draw() loads "Hello" and hands it to
// PrintStream.println. Also interns a pool-only marketing string that no
// instruction loads.
func buildGreeter(t *testing.T) (data []byte, poolOnlyIdx uint16) {
	t.Helper()
	b := jartest.NewClass("com/example/Greeter")
	helloIdx := b.String("Hello")
	poolOnlyIdx = b.String("Launch offer expired")
	refIdx := b.MethodRef("java/io/PrintStream", "println", "(Ljava/lang/String;)V")
	rHi, rLo := jartest.U16(refIdx)
	b.AddMethod("draw", "()V", []byte{
		0x12, byte(helloIdx), // ldc "Hello"
		0xb6, rHi, rLo,       // invokevirtual println
		0xb1,                 // return
	})
	return b.Bytes(), poolOnlyIdx
}

func TestRewriteClassByKey(t *testing.T) {
	data, _ := buildGreeter(t)
	store := translate.NewStore([]translate.Record{{
		Original:       "Hello",
		Translation:    "你好",
		TranslationKey: "com/example/Greeter.class:PrintStream.println:0:69609650",
	}})

	out, res, err := RewriteClass("com/example/Greeter.class", data, store)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 1, res.Replacements)
	assert.Equal(t, 1, res.KeyBased)
	assert.Equal(t, 0, res.Fallback)

	cf, err := classfile.Parse(out)
	require.NoError(t, err)
	found := false
	for idx := 1; idx < len(cf.Pool); idx++ {
		if u, ok := cf.Pool.At(idx).(*classfile.Utf8Constant); ok && u.Text == "你好" {
			found = true
			assert.Len(t, u.Raw, 6)
		}
	}
	assert.True(t, found, "translated literal missing from re-encoded pool")
}

func TestRewriteClassTextFallback(t *testing.T) {
	data, _ := buildGreeter(t)
	store := translate.NewStore([]translate.Record{{
		Original:    "Hello",
		Translation: "你好",
	}})

	out, res, err := RewriteClass("com/example/Greeter.class", data, store)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 1, res.Replacements)
	assert.Equal(t, 0, res.KeyBased)
	assert.Equal(t, 1, res.Fallback)
}

func TestRewriteClassPoolOnlyConstant(t *testing.T) {
	data, _ := buildGreeter(t)
	store := translate.NewStore([]translate.Record{{
		Original:    "Launch offer expired",
		Translation: "优惠已过期",
	}})

	out, res, err := RewriteClass("com/example/Greeter.class", data, store)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 1, res.Replacements)

	cf, err := classfile.Parse(out)
	require.NoError(t, err)
	// "Hello" is untouched, the unreferenced constant is rewritten.
	hasHello, hasTranslated := false, false
	for idx := 1; idx < len(cf.Pool); idx++ {
		if u, ok := cf.Pool.At(idx).(*classfile.Utf8Constant); ok {
			switch u.Text {
			case "Hello":
				hasHello = true
			case "优惠已过期":
				hasTranslated = true
			}
		}
	}
	assert.True(t, hasHello)
	assert.True(t, hasTranslated)
}

func TestRewriteClassNoMatches(t *testing.T) {
	data, _ := buildGreeter(t)
	store := translate.NewStore(nil)

	out, res, err := RewriteClass("com/example/Greeter.class", data, store)
	require.NoError(t, err)
	assert.Nil(t, out, "untouched class must not be re-encoded")
	assert.Equal(t, Result{}, res)
}

func TestRewriteClassIdenticalTranslationSkipped(t *testing.T) {
	data, _ := buildGreeter(t)
	store := translate.NewStore([]translate.Record{{
		Original:    "Hello",
		Translation: "Hello",
	}})

	out, res, err := RewriteClass("com/example/Greeter.class", data, store)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, 0, res.Replacements)
}

func TestRewriteClassBadData(t *testing.T) {
	store := translate.NewStore(nil)
	_, _, err := RewriteClass("Bad.class", []byte{0xCA, 0xFE, 0xBA}, store)
	require.Error(t, err)
}

func TestRewriteClassOversizeTranslation(t *testing.T) {
	data, _ := buildGreeter(t)
	store := translate.NewStore([]translate.Record{{
		Original:    "Hello",
		Translation: strings.Repeat("长", 30000), // 90000 bytes, over the u16 limit
	}})

	_, _, err := RewriteClass("com/example/Greeter.class", data, store)
	var encErr *classfile.EncodeError
	require.ErrorAs(t, err, &encErr)
}

func TestExtractClass(t *testing.T) {
	b := jartest.NewClass("com/example/Dialog")
	msgIdx := b.String("Unsaved changes will be lost")
	techIdx := b.String("com.example.internal.flag")
	b.String("Click anywhere to continue") // pool only, never loaded
	refIdx := b.MethodRef("javax/swing/JOptionPane", "showMessage", "(Ljava/lang/String;)V")
	rHi, rLo := jartest.U16(refIdx)
	b.AddAbstractMethod("render", "()V") // no Code attribute, contributes nothing
	b.AddMethod("confirm", "()V", []byte{
		0x12, byte(msgIdx),  // ldc message
		0xb6, rHi, rLo,      // invokevirtual showMessage
		0x12, byte(techIdx), // ldc technical string
		0x57,                // pop
		0xb1,                // return
	})

	strs, err := ExtractClass("com/example/Dialog.class", b.Bytes())
	require.NoError(t, err)
	require.Len(t, strs, 2)

	assert.Equal(t, "Unsaved changes will be lost", strs[0].Text)
	assert.Equal(t, "confirm", strs[0].Method)
	assert.Equal(t, "Dialog.confirm", strs[0].ActualCaller)
	assert.Equal(t, "JOptionPane.showMessage", strs[0].CalledMethod)
	assert.Equal(t, "virtual_call", strs[0].CallType)
	assert.Equal(t, 0, strs[0].InstructionIndex)
	assert.Contains(t, strs[0].TranslationKey, "com/example/Dialog.class:JOptionPane.showMessage:0:")

	assert.Equal(t, "Click anywhere to continue", strs[1].Text)
	assert.Equal(t, "constant_pool", strs[1].Context)
	assert.Equal(t, "Dialog", strs[1].ActualCaller)
}

func TestExtractClassKeysMatchRewriter(t *testing.T) {
	data, _ := buildGreeter(t)

	strs, err := ExtractClass("com/example/Greeter.class", data)
	require.NoError(t, err)
	require.NotEmpty(t, strs)

	// Feed every extracted key back as a translation and confirm the rewriter
	// re-derives all of them.
	var records []translate.Record
	for _, s := range strs {
		records = append(records, translate.Record{
			Original:       s.Text,
			Translation:    "X" + s.Text,
			TranslationKey: s.TranslationKey,
		})
	}
	_, res, err := RewriteClass("com/example/Greeter.class", data, translate.NewStore(records))
	require.NoError(t, err)
	assert.Equal(t, len(strs), res.KeyBased)
}
