// Package id hands out snowflake IDs for plan runs and generated entities.
// One node per process; Init must run before the first New.
package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a time-ordered int64 ID, unique across instances as long as
// each runs with a distinct node ID.
func New() int64 {
	return node.Generate().Int64()
}
