// Package value 定义了可序列化值树的基本单元。
//
// 一棵值树由具名的 Node 组成：叶子节点承载布尔、整数、浮点、字符串及其数组，
// Dict 节点按插入顺序持有子节点。值树构造后不可变，通常由领域类型的
// Jsonize 调用即时生成，交给 jsonize 包渲染一次后丢弃。
//
// 注意：名称与字符串内容不做任何转义，调用方需保证它们本身就是合法的 JSON 文本。
package value

import (
	"strconv"
)

// Kind 标识 Node 的具体变体。
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindInt
	KindIntArray
	KindFloat
	KindFloatArray
	KindStr
	KindDict
)

var kindNames = map[Kind]string{
	KindBool:       "bool",
	KindInt:        "int",
	KindIntArray:   "int_array",
	KindFloat:      "float",
	KindFloatArray: "float_array",
	KindStr:        "str",
	KindDict:       "dict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Node 是值树中一个具名的叶子或分支。
//
// 本包提供的变体是封闭集合，但任何外部类型只要实现该接口即可作为新的变体参与渲染。
type Node interface {
	// Name 返回节点在所属 JSON 对象中的键名。
	Name() string
	// Kind 返回节点变体。外部扩展的变体可以返回本包未定义的取值。
	Kind() Kind
	// AppendValue 将节点的值（不含键名）追加到 dst 并返回扩展后的切片。
	AppendValue(dst []byte) []byte
}

// Render 返回节点值的 JSON 文本，不包含键名。
func Render(n Node) string {
	return string(n.AppendValue(make([]byte, 0, 32)))
}

// AppendMember 以 "name":value 的形式追加一个对象成员。
func AppendMember(dst []byte, n Node) []byte {
	dst = append(dst, '"')
	dst = append(dst, n.Name()...)
	dst = append(dst, '"', ':')
	return n.AppendValue(dst)
}

// AppendMembers 依次追加所有成员，成员之间以逗号分隔，末尾不带逗号。
func AppendMembers(dst []byte, nodes []Node) []byte {
	for i, n := range nodes {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = AppendMember(dst, n)
	}
	return dst
}

// AppendFloat 以定点记法追加 v，使用能够精确还原该值的最少位数。
//
// NaN 与 ±Inf 会按 strconv 的默认输出（NaN、+Inf、-Inf）写出，结果不是合法 JSON。
func AppendFloat(dst []byte, v float64) []byte {
	return strconv.AppendFloat(dst, v, 'f', -1, 64)
}

type named struct {
	name string
}

func (n named) Name() string {
	return n.name
}
