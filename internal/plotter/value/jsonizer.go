package value

// FieldsJsonizer 由希望“平铺”输出的类型实现：返回的每个节点都直接成为顶层对象的成员。
type FieldsJsonizer interface {
	Jsonize() []Node
}

// NodeJsonizer 由希望以单个节点输出的类型实现。
//
// 返回的节点会被当作只含一个元素的序列处理，因此名为 "X" 的 Dict 输出为 {"X":{...}}，
// 外层键名不会被去掉。这与 FieldsJsonizer 的平铺行为不同，下游消费方依赖这一差异，
// 不要把两者合并。
type NodeJsonizer interface {
	JsonizeNode() Node
}

// Fields 是一组现成的节点，便于直接作为 FieldsJsonizer 传递。
type Fields []Node

var _ FieldsJsonizer = Fields(nil)

func (f Fields) Jsonize() []Node {
	return f
}
