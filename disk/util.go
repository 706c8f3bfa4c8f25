package disk

import "fmt"

func indexOutOfRangeMessage(block, total uint32) string {
	return fmt.Sprintf("invalid block %d: not in range [0, %d)", block, total)
}
