// Package idgen 提供基于雪花算法的全局唯一 ID 生成器
package idgen

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init 初始化生成器，nodeID 取值范围 0-1023
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	if err != nil {
		return fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return nil
}

// GenID 生成一个新的雪花 ID
func GenID() int64 {
	if node == nil {
		// 未显式初始化时使用节点 0
		_ = Init(0)
	}
	return node.Generate().Int64()
}

// GenIDString 生成一个新的雪花 ID 字符串
func GenIDString() string {
	if node == nil {
		_ = Init(0)
	}
	return node.Generate().String()
}
