// Package jartest builds synthetic class files and archives for tests.
package jartest

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
)

type poolEntry struct {
	encoded []byte
	slots   int
}

type methodDef struct {
	flags   uint16
	nameIdx uint16
	descIdx uint16
	codeIdx uint16 // Utf8 index of "Code", 0 = no Code attribute
	code    []byte
}

// ClassBuilder assembles a minimal but structurally valid class file.
type ClassBuilder struct {
	flags      uint16
	thisClass  uint16
	superClass uint16

	entries []poolEntry
	next    uint16

	utf8s   map[string]uint16
	classes map[string]uint16
	strings map[string]uint16
	nats    map[string]uint16
	methods []methodDef
}

// NewClass starts a class named by its internal name (e.g. "com/example/Ui")
// extending java/lang/Object.
func NewClass(name string) *ClassBuilder {
	b := &ClassBuilder{
		flags:   0x0021, // ACC_PUBLIC | ACC_SUPER
		next:    1,
		utf8s:   make(map[string]uint16),
		classes: make(map[string]uint16),
		strings: make(map[string]uint16),
		nats:    make(map[string]uint16),
	}
	b.thisClass = b.Class(name)
	b.superClass = b.Class("java/lang/Object")
	return b
}

// SetFlags overrides the class access flags (e.g. to add ACC_ENUM).
func (b *ClassBuilder) SetFlags(flags uint16) { b.flags = flags }

func (b *ClassBuilder) add(encoded []byte, slots int) uint16 {
	idx := b.next
	b.entries = append(b.entries, poolEntry{encoded: encoded, slots: slots})
	b.next += uint16(slots)
	return idx
}

// Utf8 interns a Utf8 constant and returns its pool index.
func (b *ClassBuilder) Utf8(s string) uint16 {
	if idx, ok := b.utf8s[s]; ok {
		return idx
	}
	var buf bytes.Buffer
	buf.WriteByte(1)
	binary.Write(&buf, binary.BigEndian, uint16(len(s)))
	buf.WriteString(s)
	idx := b.add(buf.Bytes(), 1)
	b.utf8s[s] = idx
	return idx
}

// Class interns a Class constant for an internal class name.
func (b *ClassBuilder) Class(name string) uint16 {
	if idx, ok := b.classes[name]; ok {
		return idx
	}
	nameIdx := b.Utf8(name)
	var buf bytes.Buffer
	buf.WriteByte(7)
	binary.Write(&buf, binary.BigEndian, nameIdx)
	idx := b.add(buf.Bytes(), 1)
	b.classes[name] = idx
	return idx
}

// String interns a String constant (and its Utf8) and returns the String
// constant's pool index.
func (b *ClassBuilder) String(text string) uint16 {
	if idx, ok := b.strings[text]; ok {
		return idx
	}
	utf8Idx := b.Utf8(text)
	var buf bytes.Buffer
	buf.WriteByte(8)
	binary.Write(&buf, binary.BigEndian, utf8Idx)
	idx := b.add(buf.Bytes(), 1)
	b.strings[text] = idx
	return idx
}

// Long adds a Long constant, occupying two pool slots.
func (b *ClassBuilder) Long(v uint64) uint16 {
	var buf bytes.Buffer
	buf.WriteByte(5)
	binary.Write(&buf, binary.BigEndian, v)
	return b.add(buf.Bytes(), 2)
}

func (b *ClassBuilder) nameAndType(name, desc string) uint16 {
	key := name + ":" + desc
	if idx, ok := b.nats[key]; ok {
		return idx
	}
	nameIdx := b.Utf8(name)
	descIdx := b.Utf8(desc)
	var buf bytes.Buffer
	buf.WriteByte(12)
	binary.Write(&buf, binary.BigEndian, nameIdx)
	binary.Write(&buf, binary.BigEndian, descIdx)
	idx := b.add(buf.Bytes(), 1)
	b.nats[key] = idx
	return idx
}

// MethodRef adds a MethodRef constant for class.name(desc).
func (b *ClassBuilder) MethodRef(class, name, desc string) uint16 {
	classIdx := b.Class(class)
	natIdx := b.nameAndType(name, desc)
	var buf bytes.Buffer
	buf.WriteByte(10)
	binary.Write(&buf, binary.BigEndian, classIdx)
	binary.Write(&buf, binary.BigEndian, natIdx)
	return b.add(buf.Bytes(), 1)
}

// AddMethod adds a method with a Code attribute wrapping the given bytecode.
func (b *ClassBuilder) AddMethod(name, desc string, code []byte) {
	b.methods = append(b.methods, methodDef{
		flags:   0x0001, // ACC_PUBLIC
		nameIdx: b.Utf8(name),
		descIdx: b.Utf8(desc),
		codeIdx: b.Utf8("Code"),
		code:    code,
	})
}

// AddAbstractMethod adds a method with ACC_ABSTRACT and no Code attribute.
func (b *ClassBuilder) AddAbstractMethod(name, desc string) {
	b.methods = append(b.methods, methodDef{
		flags:   0x0401, // ACC_PUBLIC | ACC_ABSTRACT
		nameIdx: b.Utf8(name),
		descIdx: b.Utf8(desc),
	})
}

// AddStaticInit adds a <clinit> method wrapping the given bytecode.
func (b *ClassBuilder) AddStaticInit(code []byte) {
	b.methods = append(b.methods, methodDef{
		flags:   0x0008, // ACC_STATIC
		nameIdx: b.Utf8("<clinit>"),
		descIdx: b.Utf8("()V"),
		codeIdx: b.Utf8("Code"),
		code:    code,
	})
}

// Bytes serializes the class file.
func (b *ClassBuilder) Bytes() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(0xCAFEBABE))
	binary.Write(&buf, binary.BigEndian, uint16(0))  // minor
	binary.Write(&buf, binary.BigEndian, uint16(52)) // major: Java 8

	binary.Write(&buf, binary.BigEndian, b.next) // constant_pool_count
	for _, e := range b.entries {
		buf.Write(e.encoded)
	}

	binary.Write(&buf, binary.BigEndian, b.flags)
	binary.Write(&buf, binary.BigEndian, b.thisClass)
	binary.Write(&buf, binary.BigEndian, b.superClass)
	binary.Write(&buf, binary.BigEndian, uint16(0)) // interfaces
	binary.Write(&buf, binary.BigEndian, uint16(0)) // fields

	binary.Write(&buf, binary.BigEndian, uint16(len(b.methods)))
	for _, m := range b.methods {
		binary.Write(&buf, binary.BigEndian, m.flags)
		binary.Write(&buf, binary.BigEndian, m.nameIdx)
		binary.Write(&buf, binary.BigEndian, m.descIdx)
		if m.codeIdx == 0 {
			binary.Write(&buf, binary.BigEndian, uint16(0))
			continue
		}
		binary.Write(&buf, binary.BigEndian, uint16(1))
		binary.Write(&buf, binary.BigEndian, m.codeIdx)
		binary.Write(&buf, binary.BigEndian, uint32(12+len(m.code)))
		binary.Write(&buf, binary.BigEndian, uint16(8)) // max_stack
		binary.Write(&buf, binary.BigEndian, uint16(8)) // max_locals
		binary.Write(&buf, binary.BigEndian, uint32(len(m.code)))
		buf.Write(m.code)
		binary.Write(&buf, binary.BigEndian, uint16(0)) // exception table
		binary.Write(&buf, binary.BigEndian, uint16(0)) // code attributes
	}

	binary.Write(&buf, binary.BigEndian, uint16(0)) // class attributes
	return buf.Bytes()
}

// U16 splits a pool index into its two big-endian operand bytes.
func U16(idx uint16) (hi, lo byte) {
	return byte(idx >> 8), byte(idx)
}

// Entry is one archive entry for BuildJar.
type Entry struct {
	Name string
	Data []byte
}

// BuildJar packs entries into an in-memory zip archive.
func BuildJar(entries ...Entry) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			panic(fmt.Sprintf("jartest: %v", err))
		}
		if _, err := w.Write(e.Data); err != nil {
			panic(fmt.Sprintf("jartest: %v", err))
		}
	}
	if err := zw.Close(); err != nil {
		panic(fmt.Sprintf("jartest: %v", err))
	}
	return buf.Bytes()
}
