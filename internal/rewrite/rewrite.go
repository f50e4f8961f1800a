// Package rewrite mutates matched string constants in class files and emits
// extraction entries. Both directions walk methods through the one decoder in
// internal/bytecode, so extraction and rewriting derive identical keys.
package rewrite

import (
	"rejar/internal/analyze"
	"rejar/internal/bytecode"
	"rejar/internal/classfile"
	"rejar/internal/translate"
)

// Result counts replacements made in one class file.
type Result struct {
	Replacements int
	KeyBased     int
	Fallback     int
}

func (r *Result) count(byKey bool) {
	r.Replacements++
	if byKey {
		r.KeyBased++
	} else {
		r.Fallback++
	}
}

// eachStringLoad walks every non-skipped method body and reports each ldc /
// ldc_w instruction that loads a STRING constant. ldc of int, float or class
// constants is passed over.
func eachStringLoad(cf *classfile.ClassFile, fn func(methodName string, instrs []bytecode.Instruction, i, stringIdx, utf8Idx int, text string)) error {
	for mi := range cf.Methods {
		m := &cf.Methods[mi]
		if m.IsAbstract() || analyze.SkipMethod(cf, m) {
			continue
		}
		code, ok := m.Code(cf.Pool)
		if !ok {
			continue
		}
		instrs, err := bytecode.Decode(code)
		if err != nil {
			return &classfile.DecodeError{Reason: "method body", Err: err}
		}
		methodName, _ := cf.Utf8At(int(m.NameIndex))

		for i, in := range instrs {
			if !in.IsStringLoad() {
				continue
			}
			stringIdx := in.PoolIndex()
			sc, ok := cf.Pool.At(stringIdx).(*classfile.StringConstant)
			if !ok {
				continue
			}
			text, ok := cf.Utf8At(int(sc.Utf8Index))
			if !ok {
				continue
			}
			fn(methodName, instrs, i, stringIdx, int(sc.Utf8Index), text)
		}
	}
	return nil
}

// RewriteClass applies store translations to one class entry.
//
// Pass 1 walks method bodies: each string load derives its usage context and
// key and, on a matching translation that differs from the current text,
// overwrites the Utf8 entry and marks the string constant as mapped. Pass 2
// walks the remaining STRING pool entries directly, with "constant_pool" as
// the context and the pool index as the position — that covers strings never
// reached through a traceable load. Pool indices are never renumbered.
//
// Returns nil bytes when nothing was replaced: the caller keeps the original
// entry byte-identical.
func RewriteClass(entryName string, data []byte, store *translate.Store) ([]byte, Result, error) {
	cf, err := classfile.Parse(data)
	if err != nil {
		return nil, Result{}, err
	}

	var res Result
	mapped := make(map[int]bool)

	err = eachStringLoad(cf, func(methodName string, instrs []bytecode.Instruction, i, stringIdx, utf8Idx int, text string) {
		if mapped[stringIdx] {
			return
		}
		u := analyze.Context(instrs, i, cf, methodName)
		key := analyze.Key(entryName, u.KeyContext(), instrs[i].Position, text)
		m, ok := store.Lookup(key, text)
		if !ok || m.Translation == "" || m.Translation == text {
			return
		}
		cf.SetUtf8(utf8Idx, m.Translation)
		mapped[stringIdx] = true
		res.count(m.ByKey)
	})
	if err != nil {
		return nil, Result{}, err
	}

	for _, idx := range cf.StringIndices() {
		if mapped[idx] {
			continue
		}
		sc := cf.Pool.At(idx).(*classfile.StringConstant)
		text, ok := cf.Utf8At(int(sc.Utf8Index))
		if !ok {
			continue
		}
		key := analyze.Key(entryName, "constant_pool", idx, text)
		m, ok := store.Lookup(key, text)
		if !ok || m.Translation == "" || m.Translation == text {
			continue
		}
		cf.SetUtf8(int(sc.Utf8Index), m.Translation)
		mapped[idx] = true
		res.count(m.ByKey)
	}

	if res.Replacements == 0 {
		return nil, res, nil
	}
	out, err := cf.Encode()
	if err != nil {
		return nil, Result{}, err
	}
	return out, res, nil
}
