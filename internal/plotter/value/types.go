package value

import (
	"strconv"
)

// 编译期断言：确保内置变体实现了 Node 接口。
var (
	_ Node = Bool{}
	_ Node = Int{}
	_ Node = IntArray{}
	_ Node = Float{}
	_ Node = FloatArray{}
	_ Node = Str{}
	_ Node = Dict{}
)

// Bool 渲染为 true / false。
type Bool struct {
	named
	v bool
}

func NewBool(name string, v bool) Bool {
	return Bool{named: named{name}, v: v}
}

func (b Bool) Kind() Kind  { return KindBool }
func (b Bool) Value() bool { return b.v }

func (b Bool) AppendValue(dst []byte) []byte {
	return strconv.AppendBool(dst, b.v)
}

// Int 渲染为十进制整数。
type Int struct {
	named
	v int64
}

func NewInt(name string, v int64) Int {
	return Int{named: named{name}, v: v}
}

func (i Int) Kind() Kind   { return KindInt }
func (i Int) Value() int64 { return i.v }

func (i Int) AppendValue(dst []byte) []byte {
	return strconv.AppendInt(dst, i.v, 10)
}

// IntArray 渲染为 [e0,e1,...]，空数组渲染为 []。
type IntArray struct {
	named
	vs []int64
}

// NewIntArray 会复制 vs，之后修改 vs 不影响节点。
func NewIntArray(name string, vs []int64) IntArray {
	return IntArray{named: named{name}, vs: append([]int64(nil), vs...)}
}

func (a IntArray) Kind() Kind { return KindIntArray }
func (a IntArray) Len() int   { return len(a.vs) }

// Values 返回元素副本。
func (a IntArray) Values() []int64 {
	return append([]int64(nil), a.vs...)
}

func (a IntArray) AppendValue(dst []byte) []byte {
	dst = append(dst, '[')
	for i, v := range a.vs {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = strconv.AppendInt(dst, v, 10)
	}
	return append(dst, ']')
}

// Float 使用 AppendFloat 的定点最短表示。
type Float struct {
	named
	v float64
}

func NewFloat(name string, v float64) Float {
	return Float{named: named{name}, v: v}
}

func (f Float) Kind() Kind     { return KindFloat }
func (f Float) Value() float64 { return f.v }

func (f Float) AppendValue(dst []byte) []byte {
	return AppendFloat(dst, f.v)
}

// FloatArray 对每个元素应用与 Float 相同的格式。
type FloatArray struct {
	named
	vs []float64
}

// NewFloatArray 会复制 vs，之后修改 vs 不影响节点。
func NewFloatArray(name string, vs []float64) FloatArray {
	return FloatArray{named: named{name}, vs: append([]float64(nil), vs...)}
}

func (a FloatArray) Kind() Kind { return KindFloatArray }
func (a FloatArray) Len() int   { return len(a.vs) }

// Values 返回元素副本。
func (a FloatArray) Values() []float64 {
	return append([]float64(nil), a.vs...)
}

func (a FloatArray) AppendValue(dst []byte) []byte {
	dst = append(dst, '[')
	for i, v := range a.vs {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = AppendFloat(dst, v)
	}
	return append(dst, ']')
}

// Str 原样包裹在双引号中输出，不做转义。
type Str struct {
	named
	v string
}

func NewStr(name string, v string) Str {
	return Str{named: named{name}, v: v}
}

func (s Str) Kind() Kind    { return KindStr }
func (s Str) Value() string { return s.v }

func (s Str) AppendValue(dst []byte) []byte {
	dst = append(dst, '"')
	dst = append(dst, s.v...)
	return append(dst, '"')
}

// Dict 是具名的嵌套对象，子节点按插入顺序输出，没有子节点时渲染为 {}。
type Dict struct {
	named
	children []Node
}

// NewDict 创建 Dict，children 切片会被复制。
//
// 只传入一个子节点即可得到单成员对象：{"child":...}。
func NewDict(name string, children ...Node) Dict {
	return Dict{named: named{name}, children: append([]Node(nil), children...)}
}

// DictOf 将一个返回字段序列的类型包装为具名 Dict，用于嵌套结构体的组合。
func DictOf(name string, j FieldsJsonizer) Dict {
	return NewDict(name, j.Jsonize()...)
}

func (d Dict) Kind() Kind { return KindDict }
func (d Dict) Len() int   { return len(d.children) }

// Children 返回子节点切片的副本。
func (d Dict) Children() []Node {
	return append([]Node(nil), d.children...)
}

func (d Dict) AppendValue(dst []byte) []byte {
	dst = append(dst, '{')
	dst = AppendMembers(dst, d.children)
	return append(dst, '}')
}
