package jsonize

import (
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/lk2023060901/danmu-garden-plotter/internal/plotter/value"
	"github.com/lk2023060901/danmu-garden-plotter/pkg/util/merr"
)

// Validate 检查值树能否在不转义的前提下渲染为合法 JSON。
//
// 检查项：
//   - 名称与 Str 内容为合法 UTF-8，且不含 '"'、'\' 以及 0x20 以下的控制字符；
//   - Float / FloatArray 的元素以及时间戳（若通过 opts 指定）为有限值。
//
// 渲染本身从不做这些检查，Validate 只在调用方显式要求时使用。
// 失败时返回 merr.ErrEncodingInvalid，path 为以 '.' 连接的节点名路径。
func Validate(nodes []value.Node, opts ...Option) error {
	o := newOptions(opts)
	if o.hasTimestamp && !isFinite(o.timestamp) {
		return merr.WrapErrEncodingInvalid(timestampKey, "timestamp is not finite")
	}
	return validateNodes("", nodes)
}

func validateNodes(prefix string, nodes []value.Node) error {
	for _, n := range nodes {
		if n == nil {
			return merr.WrapErrEncodingInvalid(prefix, "nil node")
		}
		path := n.Name()
		if prefix != "" {
			path = prefix + "." + path
		}
		if reason, ok := checkText(n.Name()); !ok {
			return merr.WrapErrEncodingInvalid(path, "name "+reason)
		}

		switch n := n.(type) {
		case value.Str:
			if reason, ok := checkText(n.Value()); !ok {
				return merr.WrapErrEncodingInvalid(path, "string "+reason)
			}
		case value.Float:
			if !isFinite(n.Value()) {
				return merr.WrapErrEncodingInvalid(path, "float is not finite")
			}
		case value.FloatArray:
			for i, v := range n.Values() {
				if !isFinite(v) {
					return merr.WrapErrEncodingInvalid(path+"["+strconv.Itoa(i)+"]", "float is not finite")
				}
			}
		case value.Dict:
			if err := validateNodes(path, n.Children()); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkText(s string) (string, bool) {
	if !utf8.ValidString(s) {
		return "is not valid utf-8", false
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"' || c == '\\':
			return "contains " + strconv.QuoteRune(rune(c)) + " which needs escaping", false
		case c < 0x20:
			return "contains control character " + strconv.QuoteRune(rune(c)), false
		}
	}
	return "", true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
