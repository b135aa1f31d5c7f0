package orchestrator

import (
	"strings"
	"time"

	"github.com/jinzhu/copier"

	"github.com/jimyag/vdp/internal/vdp/entity"
	"github.com/jimyag/vdp/internal/vdp/repository/model"
)

// 模型与实体的字段名基本一致，copier 负责大头
// 类型不同的字段（状态、时间、公钥列表）单独处理

func toDeploymentEntity(m *model.Deployment) *entity.Deployment {
	var e entity.Deployment
	_ = copier.Copy(&e, m)
	e.State = entity.DeploymentState(m.State)
	e.AuthorizedKeys = splitKeys(m.AuthorizedKeys)
	e.CreatedAt = m.CreatedAt.Format(time.RFC3339)
	e.UpdatedAt = m.UpdatedAt.Format(time.RFC3339)
	return &e
}

func toNodeEntity(m *model.Node) *entity.Node {
	var e entity.Node
	_ = copier.Copy(&e, m)
	e.TotalMemMB = m.TotalMemoryMB
	e.CreatedAt = m.CreatedAt.Format(time.RFC3339)
	return &e
}

func toPlanEntity(m *model.Plan) *entity.Plan {
	var e entity.Plan
	_ = copier.Copy(&e, m)
	e.CreatedAt = m.CreatedAt.Format(time.RFC3339)
	return &e
}

func toTemplateEntity(m *model.Template) *entity.OSTemplate {
	var e entity.OSTemplate
	_ = copier.Copy(&e, m)
	e.CreatedAt = m.CreatedAt.Format(time.RFC3339)
	return &e
}

func toSnapshotEntity(m *model.Snapshot) *entity.Snapshot {
	var e entity.Snapshot
	_ = copier.Copy(&e, m)
	e.CreatedAt = m.CreatedAt.Format(time.RFC3339)
	return &e
}

func toQuotaEntity(m *model.Quota) *entity.Quota {
	var e entity.Quota
	_ = copier.Copy(&e, m)
	return &e
}

func toUsageRecordEntity(m *model.UsageRecord) *entity.UsageRecord {
	var e entity.UsageRecord
	_ = copier.Copy(&e, m)
	e.ObservedState = entity.DeploymentState(m.ObservedState)
	e.SampledAt = m.SampledAt.Format(time.RFC3339)
	return &e
}

// splitKeys 公钥在库中按行存储
func splitKeys(joined string) []string {
	if joined == "" {
		return nil
	}
	var keys []string
	for _, line := range strings.Split(joined, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			keys = append(keys, line)
		}
	}
	return keys
}

// joinKeys 公钥列表拼成按行存储的形式
func joinKeys(keys []string) string {
	return strings.Join(keys, "\n")
}
