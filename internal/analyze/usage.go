// Package analyze classifies how loaded string literals are consumed and
// derives the stable translation keys used to re-target them.
package analyze

import (
	"fmt"

	"rejar/internal/bytecode"
	"rejar/internal/classfile"
)

// lookahead is how many instructions past a string load are inspected for a
// consuming call before the context is declared undetermined.
const lookahead = 10

// Usage describes how a loaded string is consumed.
type Usage struct {
	Context      string // human-readable, e.g. "draw() -> PrintStream.println()"
	CalledMethod string // "PrintStream.println", empty if undetermined
	CallType     string // "virtual_call" etc, empty if undetermined
}

// KeyContext is the key component derived from a usage: the called method
// when one was resolved, "unknown" otherwise.
func (u Usage) KeyContext() string {
	if u.CalledMethod != "" {
		return u.CalledMethod
	}
	return "unknown"
}

// Context scans forward from the string-load instruction at index i and
// classifies how the value is used. The first invoke-family instruction
// within the window wins; a stack discard or return before any invoke means
// the string goes nowhere interesting and the context stays undetermined.
func Context(instrs []bytecode.Instruction, i int, cf *classfile.ClassFile, enclosingMethod string) Usage {
	u := Usage{Context: enclosingMethod + "()"}
	for j := i + 1; j < len(instrs) && j <= i+lookahead; j++ {
		in := instrs[j]
		switch {
		case in.IsInvoke():
			className, methodName, ok := cf.ResolveMethodRef(in.PoolIndex())
			if !ok {
				return u
			}
			simple := classfile.SimpleClassName(className)
			u.CalledMethod = simple + "." + methodName
			u.CallType = in.InvokeKind()
			u.Context = fmt.Sprintf("%s() -> %s.%s()", enclosingMethod, simple, methodName)
			return u
		case in.IsPop() || in.IsReturn():
			return u
		}
	}
	return u
}

// SkipMethod reports whether a method carries no user-facing strings worth
// walking: the static initializer of an enum class accumulates large numbers
// of technical constant names.
func SkipMethod(cf *classfile.ClassFile, m *classfile.Method) bool {
	if !cf.IsEnum() {
		return false
	}
	name, _ := cf.Utf8At(int(m.NameIndex))
	desc, _ := cf.Utf8At(int(m.DescriptorIndex))
	return name == "<clinit>" && desc == "()V"
}
