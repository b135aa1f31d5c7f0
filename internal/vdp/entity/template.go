package entity

// OSTemplate 操作系统模板
type OSTemplate struct {
	ID            string `json:"id"`             // 模板 ID：tmpl-{递增 ID}
	Name          string `json:"name"`           // 模板名称，例如 ubuntu-jammy
	BackingPath   string `json:"backing_path"`   // 基础镜像路径（qcow2）
	BackingFormat string `json:"backing_format"` // 基础镜像格式
	OSFamily      string `json:"os_family"`      // 操作系统家族：linux、bsd 等
	CloudInit     bool   `json:"cloud_init"`     // 是否支持启动配置注入
	CreatedAt     string `json:"created_at"`
}

// RegisterTemplateRequest 注册系统模板请求
type RegisterTemplateRequest struct {
	Name          string `json:"name"`
	BackingPath   string `json:"backing_path"`
	BackingFormat string `json:"backing_format,omitempty"` // 默认 qcow2
	OSFamily      string `json:"os_family,omitempty"`      // 默认 linux
	CloudInit     bool   `json:"cloud_init"`
}

// RegisterTemplateResponse 注册系统模板响应
type RegisterTemplateResponse struct {
	Template *OSTemplate `json:"template"`
}

// DescribeTemplatesResponse 查询系统模板响应
type DescribeTemplatesResponse struct {
	Templates []OSTemplate `json:"templates"`
}
