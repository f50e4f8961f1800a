// Package classfile decodes and re-encodes Java class files far enough to
// reach every string constant: the full constant pool is modeled, the rest of
// the file is parsed structurally and carried through byte-for-byte.
package classfile

import (
	"bytes"
	"strings"
)

const magic = 0xCAFEBABE

// Class and method access flag bits (JVMS §4.1, §4.6).
const (
	AccAbstract = 0x0400
	AccEnum     = 0x4000
)

// Attribute is a method attribute with its raw payload.
type Attribute struct {
	NameIndex uint16
	Data      []byte
}

// Method is one method record of a class file.
type Method struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

// IsAbstract reports whether the method carries ACC_ABSTRACT.
func (m *Method) IsAbstract() bool { return m.AccessFlags&AccAbstract != 0 }

// Code returns the raw bytecode of the method's Code attribute, or false if
// the method has none (abstract and native methods).
func (m *Method) Code(pool Pool) ([]byte, bool) {
	for _, a := range m.Attributes {
		name, ok := pool.Utf8At(int(a.NameIndex))
		if !ok || name != "Code" {
			continue
		}
		s := NewStream(a.Data)
		if err := s.Skip(4); err != nil { // max_stack, max_locals
			return nil, false
		}
		n, err := s.U32()
		if err != nil {
			return nil, false
		}
		code, err := s.Bytes(int(n))
		if err != nil {
			return nil, false
		}
		return code, true
	}
	return nil, false
}

// ClassFile is one decoded class. Only the constant pool is re-encoded on
// serialization; tail holds every byte after the pool verbatim, so constant
// pool indices are never renumbered and untouched regions are byte-identical.
type ClassFile struct {
	Minor       uint16
	Major       uint16
	Pool        Pool
	AccessFlags uint16
	ThisClass   uint16
	SuperClass  uint16
	Methods     []Method

	tail []byte
}

// Parse decodes class bytes. Any structural failure returns a DecodeError;
// there is no partial decode.
func Parse(data []byte) (*ClassFile, error) {
	s := NewStream(data)

	m, err := s.U32()
	if err != nil {
		return nil, decodeErrf(err, "magic")
	}
	if m != magic {
		return nil, decodeErrf(nil, "bad magic 0x%08x", m)
	}

	cf := &ClassFile{}
	if cf.Minor, err = s.U16(); err != nil {
		return nil, decodeErrf(err, "minor version")
	}
	if cf.Major, err = s.U16(); err != nil {
		return nil, decodeErrf(err, "major version")
	}
	if cf.Pool, err = decodePool(s); err != nil {
		return nil, err
	}

	tailStart := s.Position()

	if cf.AccessFlags, err = s.U16(); err != nil {
		return nil, decodeErrf(err, "access flags")
	}
	if cf.ThisClass, err = s.U16(); err != nil {
		return nil, decodeErrf(err, "this class")
	}
	if cf.SuperClass, err = s.U16(); err != nil {
		return nil, decodeErrf(err, "super class")
	}

	ifaceCount, err := s.U16()
	if err != nil {
		return nil, decodeErrf(err, "interface count")
	}
	if err := s.Skip(2 * int(ifaceCount)); err != nil {
		return nil, decodeErrf(err, "interfaces")
	}

	// Fields: structure only, nothing extractable lives here.
	fieldCount, err := s.U16()
	if err != nil {
		return nil, decodeErrf(err, "field count")
	}
	for i := 0; i < int(fieldCount); i++ {
		if _, err := readMember(s); err != nil {
			return nil, decodeErrf(err, "field %d", i)
		}
	}

	methodCount, err := s.U16()
	if err != nil {
		return nil, decodeErrf(err, "method count")
	}
	cf.Methods = make([]Method, 0, methodCount)
	for i := 0; i < int(methodCount); i++ {
		m, err := readMember(s)
		if err != nil {
			return nil, decodeErrf(err, "method %d", i)
		}
		cf.Methods = append(cf.Methods, m)
	}

	// Class-level attributes: validate structure to the end of the file.
	attrCount, err := s.U16()
	if err != nil {
		return nil, decodeErrf(err, "class attribute count")
	}
	for i := 0; i < int(attrCount); i++ {
		if _, err := readAttribute(s); err != nil {
			return nil, decodeErrf(err, "class attribute %d", i)
		}
	}

	cf.tail = data[tailStart:]
	return cf, nil
}

func readMember(s *Stream) (Method, error) {
	var m Method
	var err error
	if m.AccessFlags, err = s.U16(); err != nil {
		return m, err
	}
	if m.NameIndex, err = s.U16(); err != nil {
		return m, err
	}
	if m.DescriptorIndex, err = s.U16(); err != nil {
		return m, err
	}
	attrCount, err := s.U16()
	if err != nil {
		return m, err
	}
	for i := 0; i < int(attrCount); i++ {
		a, err := readAttribute(s)
		if err != nil {
			return m, err
		}
		m.Attributes = append(m.Attributes, a)
	}
	return m, nil
}

func readAttribute(s *Stream) (Attribute, error) {
	var a Attribute
	var err error
	if a.NameIndex, err = s.U16(); err != nil {
		return a, err
	}
	n, err := s.U32()
	if err != nil {
		return a, err
	}
	if a.Data, err = s.Bytes(int(n)); err != nil {
		return a, err
	}
	return a, nil
}

// Encode re-serializes the class: magic, version, re-encoded pool, then the
// original post-pool bytes verbatim.
func (cf *ClassFile) Encode() ([]byte, error) {
	var buf bytes.Buffer
	writeU32(&buf, magic)
	writeU16(&buf, cf.Minor)
	writeU16(&buf, cf.Major)
	if err := cf.Pool.encode(&buf); err != nil {
		return nil, err
	}
	buf.Write(cf.tail)
	return buf.Bytes(), nil
}

// Utf8At resolves a pool index to its decoded text.
func (cf *ClassFile) Utf8At(i int) (string, bool) {
	return cf.Pool.Utf8At(i)
}

// SetUtf8 replaces the content of the Utf8 entry at index i. The declared
// length tracks the new byte length automatically on encode.
func (cf *ClassFile) SetUtf8(i int, text string) bool {
	u, ok := cf.Pool.At(i).(*Utf8Constant)
	if !ok {
		return false
	}
	u.Raw = []byte(text)
	u.Text = text
	return true
}

// StringIndices lists the pool indices of every STRING constant in order.
func (cf *ClassFile) StringIndices() []int {
	var out []int
	for i := 1; i < len(cf.Pool); i++ {
		if _, ok := cf.Pool[i].(*StringConstant); ok {
			out = append(out, i)
		}
	}
	return out
}

// IsEnum reports whether the class carries ACC_ENUM.
func (cf *ClassFile) IsEnum() bool { return cf.AccessFlags&AccEnum != 0 }

// ClassName returns this class's fully qualified internal name
// (e.g. "com/example/Widget").
func (cf *ClassFile) ClassName() string {
	cc, ok := cf.Pool.At(int(cf.ThisClass)).(*ClassConstant)
	if !ok {
		return ""
	}
	name, _ := cf.Pool.Utf8At(int(cc.NameIndex))
	return name
}

// ResolveMethodRef resolves a MethodRef or InterfaceMethodRef pool index to
// the referenced class's internal name and the method name.
func (cf *ClassFile) ResolveMethodRef(i int) (className, methodName string, ok bool) {
	var classIdx, natIdx uint16
	switch c := cf.Pool.At(i).(type) {
	case *MethodRefConstant:
		classIdx, natIdx = c.ClassIndex, c.NameAndTypeIndex
	case *InterfaceMethodRefConstant:
		classIdx, natIdx = c.ClassIndex, c.NameAndTypeIndex
	default:
		return "", "", false
	}

	cc, okc := cf.Pool.At(int(classIdx)).(*ClassConstant)
	nat, okn := cf.Pool.At(int(natIdx)).(*NameAndTypeConstant)
	if !okc || !okn {
		return "", "", false
	}
	className, okc = cf.Pool.Utf8At(int(cc.NameIndex))
	methodName, okn = cf.Pool.Utf8At(int(nat.NameIndex))
	if !okc || !okn {
		return "", "", false
	}
	return className, methodName, true
}

// SimpleClassName strips the package from an internal class name:
// "java/io/PrintStream" -> "PrintStream".
func SimpleClassName(internal string) string {
	if i := strings.LastIndexByte(internal, '/'); i >= 0 {
		return internal[i+1:]
	}
	return internal
}
