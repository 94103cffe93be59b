package uid

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time-sortable int64 IDs. Node must be unique per
// running instance (taken from configuration).
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake returns a snowflake generator for the given node number.
func NewSnowflake(node int64) (*Snowflake, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("uid: snowflake node: %w", err)
	}
	return &Snowflake{node: n}, nil
}

// Generate returns the next snowflake ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
