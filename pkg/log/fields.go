package log

import "go.uber.org/zap"

const (
	FieldNameModule      = "module"
	FieldNameComponent   = "component"
	FieldNameDestination = "destination"
	FieldNameStage       = "stage"
)

// FieldModule 返回一个包含模块名的 zap 字段。
func FieldModule(module string) zap.Field {
	return zap.String(FieldNameModule, module)
}

// FieldComponent 返回一个包含组件名的 zap 字段。
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}

// FieldDestination 返回一个包含发送目标（ip:port 或配置名）的 zap 字段。
func FieldDestination(destination string) zap.Field {
	return zap.String(FieldNameDestination, destination)
}

// FieldStage 返回一个包含发送链路阶段的 zap 字段。
func FieldStage(stage string) zap.Field {
	return zap.String(FieldNameStage, stage)
}
