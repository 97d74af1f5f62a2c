package snowflake

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

// Generator 雪花 ID 生成器
type Generator struct {
	node *snowflake.Node
}

// New 创建生成器，machineID 取值 0-1023，越界时使用 1
func New(machineID int64) (*Generator, error) {
	if machineID < 0 || machineID > 1023 {
		zap.L().Warn("invalid snowflake machine id, using 1", zap.Int64("machineID", machineID))
		machineID = 1
	}
	node, err := snowflake.NewNode(machineID)
	if err != nil {
		return nil, err
	}
	zap.L().Info("snowflake node initialized", zap.Int64("machineID", machineID))
	return &Generator{node: node}, nil
}

// GenerateID 生成雪花 ID (int64)
func (g *Generator) GenerateID() int64 {
	return g.node.Generate().Int64()
}

// GenerateIDString 生成雪花 ID (string)
// 用于 JSON 序列化，避免 JavaScript 精度丢失
func (g *Generator) GenerateIDString() string {
	return g.node.Generate().String()
}
