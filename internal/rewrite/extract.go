package rewrite

import (
	"rejar/internal/analyze"
	"rejar/internal/bytecode"
	"rejar/internal/classfile"
	"rejar/internal/report"
)

// ExtractClass lists the translatable string occurrences of one class entry.
// Method bodies are walked exactly as RewriteClass walks them, so every
// emitted translation_key is one the rewriter will re-derive; string
// constants never reached by a load get a "constant_pool" entry keyed by
// their pool index. Technical strings are filtered from the report.
func ExtractClass(entryName string, data []byte) ([]report.ClassString, error) {
	cf, err := classfile.Parse(data)
	if err != nil {
		return nil, err
	}

	className := classfile.SimpleClassName(cf.ClassName())
	seen := make(map[int]bool)
	var out []report.ClassString

	err = eachStringLoad(cf, func(methodName string, instrs []bytecode.Instruction, i, stringIdx, utf8Idx int, text string) {
		seen[stringIdx] = true
		if !analyze.UserVisible(text) {
			return
		}
		u := analyze.Context(instrs, i, cf, methodName)
		out = append(out, report.ClassString{
			Text:             text,
			Context:          u.Context,
			Filename:         entryName,
			Method:           methodName,
			ActualCaller:     className + "." + methodName,
			CalledMethod:     u.CalledMethod,
			CallType:         u.CallType,
			TranslationKey:   analyze.Key(entryName, u.KeyContext(), instrs[i].Position, text),
			InstructionIndex: instrs[i].Position,
		})
	})
	if err != nil {
		return nil, err
	}

	for _, idx := range cf.StringIndices() {
		if seen[idx] {
			continue
		}
		sc := cf.Pool.At(idx).(*classfile.StringConstant)
		text, ok := cf.Utf8At(int(sc.Utf8Index))
		if !ok || !analyze.UserVisible(text) {
			continue
		}
		out = append(out, report.ClassString{
			Text:             text,
			Context:          "constant_pool",
			Filename:         entryName,
			ActualCaller:     className,
			TranslationKey:   analyze.Key(entryName, "constant_pool", idx, text),
			InstructionIndex: idx,
		})
	}
	return out, nil
}
