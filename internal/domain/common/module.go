package common

import (
	"anonboard/internal/domain/common/handler"
	"anonboard/internal/pkg/middleware"
	"anonboard/internal/pkg/registry"
)

// CommonModule 通用功能模块
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	h := handler.NewUploadHandler(ctx.BlobStore)
	// 文件上传接口
	ctx.Router.POST("/upload", middleware.AuthMiddleware(), h.UploadFile)
	return nil
}
