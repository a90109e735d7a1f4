// Package content abstracts the content repository the retention workflow
// operates on: a tree of typed nodes addressable by stable UID or by path,
// supporting move (cut+paste), rename and permanent delete.
package content

import (
	"context"

	"github.com/google/uuid"
)

func newUID() string {
	return uuid.NewString()
}

// Node is a snapshot of one content object. ParentUID is empty for the root.
type Node struct {
	UID         string `json:"uid"`
	ID          string `json:"id"`
	ParentUID   string `json:"parent_uid,omitempty"`
	Title       string `json:"title"`
	PortalType  string `json:"portal_type"`
	ReviewState string `json:"review_state"`
}

// TitleOrID returns the display title, falling back to the node id.
func (n Node) TitleOrID() string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}

type Repository interface {
	// Root returns the repository root node.
	Root(ctx context.Context) (Node, error)

	// GetByUID resolves a node by stable identifier.
	// Returns model.ErrNodeNotFound when no such node exists.
	GetByUID(ctx context.Context, uid string) (Node, error)

	// GetChild resolves a direct child of containerUID by node id.
	GetChild(ctx context.Context, containerUID string, id string) (Node, error)

	// Resolve walks the given id segments starting from startUID.
	Resolve(ctx context.Context, startUID string, segments []string) (Node, error)

	// Path returns the absolute slash-joined path of the node,
	// including the root id ("/site/docs/doc1").
	Path(ctx context.Context, uid string) (string, error)

	// ChildIDs enumerates the node ids contained in uid, in insertion order.
	ChildIDs(ctx context.Context, uid string) ([]string, error)

	// Create adds a new node under parentUID.
	// Returns model.ErrNodeExists when the id is already taken.
	Create(ctx context.Context, parentUID string, node Node) (Node, error)

	// Move reparents a node (cut+paste). When the target container already
	// holds the node's id the repository assigns a fresh id instead of
	// failing; the returned node carries the id actually used.
	Move(ctx context.Context, uid string, newParentUID string) (Node, error)

	// Rename changes a node's id within its container.
	Rename(ctx context.Context, uid string, newID string) error

	// Delete permanently erases the node and everything beneath it.
	Delete(ctx context.Context, uid string) error
}
