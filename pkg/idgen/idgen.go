// Package idgen 提供递增 ID 生成器
// 使用 Sonyflake 算法生成全局唯一且递增的 ID
package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

// Generator 递增 ID 生成器
type Generator struct {
	sf *sonyflake.Sonyflake
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

// DefaultGenerator 返回默认的 ID 生成器
func DefaultGenerator() *Generator {
	defaultGeneratorOnce.Do(func() {
		defaultGenerator = New()
	})
	return defaultGenerator
}

// New 创建新的 ID 生成器
func New() *Generator {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), // 起始时间
	})
	if sf == nil {
		// 如果创建失败，使用当前时间作为起始时间
		sf = sonyflake.NewSonyflake(sonyflake.Settings{
			StartTime: time.Now(),
		})
	}

	return &Generator{
		sf: sf,
	}
}

// generateIDWithPrefix 生成带前缀的 ID
func (g *Generator) generateIDWithPrefix(prefix, errorMsg string) (string, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return "", fmt.Errorf("%s: %w", errorMsg, err)
	}
	return fmt.Sprintf("%s-%d", prefix, id), nil
}

// GenerateDeploymentID 生成部署 ID（格式：vd-{递增 ID}）
func (g *Generator) GenerateDeploymentID() (string, error) {
	return g.generateIDWithPrefix("vd", "generate deployment ID")
}

// GenerateSnapshotID 生成快照 ID（格式：snap-{递增 ID}）
func (g *Generator) GenerateSnapshotID() (string, error) {
	return g.generateIDWithPrefix("snap", "generate snapshot ID")
}

// GenerateNodeID 生成计算节点 ID（格式：node-{递增 ID}）
func (g *Generator) GenerateNodeID() (string, error) {
	return g.generateIDWithPrefix("node", "generate node ID")
}

// GeneratePlanID 生成套餐 ID（格式：plan-{递增 ID}）
func (g *Generator) GeneratePlanID() (string, error) {
	return g.generateIDWithPrefix("plan", "generate plan ID")
}

// GenerateTemplateID 生成系统模板 ID（格式：tmpl-{递增 ID}）
func (g *Generator) GenerateTemplateID() (string, error) {
	return g.generateIDWithPrefix("tmpl", "generate template ID")
}

// GenerateID 生成通用递增 ID
func (g *Generator) GenerateID() (uint64, error) {
	return g.sf.NextID()
}

// 包级别的便捷函数，使用默认生成器

// GenerateDeploymentID 使用默认生成器生成部署 ID
func GenerateDeploymentID() (string, error) {
	return DefaultGenerator().GenerateDeploymentID()
}

// GenerateSnapshotID 使用默认生成器生成快照 ID
func GenerateSnapshotID() (string, error) {
	return DefaultGenerator().GenerateSnapshotID()
}

// GenerateNodeID 使用默认生成器生成计算节点 ID
func GenerateNodeID() (string, error) {
	return DefaultGenerator().GenerateNodeID()
}

// GeneratePlanID 使用默认生成器生成套餐 ID
func GeneratePlanID() (string, error) {
	return DefaultGenerator().GeneratePlanID()
}

// GenerateTemplateID 使用默认生成器生成系统模板 ID
func GenerateTemplateID() (string, error) {
	return DefaultGenerator().GenerateTemplateID()
}
