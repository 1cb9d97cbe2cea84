package bridge

import (
	"context"
	"fmt"

	"github.com/mj1618/uibridge/internal/model"
	"github.com/mj1618/uibridge/internal/protocol"
)

// ElementFetcher is the slice of Gateway the tree builder needs. The
// protocol only exposes one-node-at-a-time primitives, so reconstructing a
// subtree of n expanded nodes costs up to 2n round trips (one properties
// fetch per node, one children fetch per node with depth remaining). That
// cost is inherent to the protocol; keeping it behind this interface means
// a future bulk-fetch primitive can replace it without touching the tool
// contract.
type ElementFetcher interface {
	ElementProperties(ctx context.Context, element protocol.Handle) (protocol.ElementProperties, error)
	ElementChildren(ctx context.Context, element protocol.Handle) ([]protocol.Handle, error)
}

// Tree depth bounds, matching the tool defaults.
const (
	DefaultTreeDepth = 10
	MaxTreeDepth     = 50
)

// ClampTreeDepth normalizes a requested max_depth: negative means the
// default, anything above the cap is capped.
func ClampTreeDepth(depth int) int {
	if depth < 0 {
		return DefaultTreeDepth
	}
	if depth > MaxTreeDepth {
		return MaxTreeDepth
	}
	return depth
}

// BuildTree reconstructs the element subtree rooted at root down to
// maxDepth. Depth 0 returns the root node alone, with no children round
// trip issued. Child ordering follows the peer's reported order. Any
// failing sub-fetch aborts the whole build: no partial tree is ever
// returned, so the caller sees either a complete subtree or one error.
func BuildTree(ctx context.Context, f ElementFetcher, root protocol.Handle, maxDepth int) (*model.ElementNode, error) {
	props, err := f.ElementProperties(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("element %d/%d properties: %w", root.Index, root.Generation, err)
	}
	node := model.NodeFromProperties(root, props)

	if maxDepth == 0 {
		return &node, nil
	}

	children, err := f.ElementChildren(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("element %d/%d children: %w", root.Index, root.Generation, err)
	}
	for _, child := range children {
		sub, err := BuildTree(ctx, f, child, maxDepth-1)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, *sub)
	}
	return &node, nil
}
