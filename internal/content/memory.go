package content

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"go-content-retention/internal/model"
)

type memoryNode struct {
	node     Node
	children []string // child UIDs in insertion order
}

// Memory is an in-process Repository used by tests and single-node embedding.
// It applies the same paste semantics as the Postgres implementation:
// moving into a container that already holds the id assigns a fresh one.
type Memory struct {
	mu      sync.RWMutex
	nodes   map[string]*memoryNode
	rootUID string
}

// NewMemory builds a tree with a root node using the given id.
func NewMemory(rootID string) *Memory {
	rootUID := uuid.NewString()
	return &Memory{
		nodes: map[string]*memoryNode{
			rootUID: {node: Node{UID: rootUID, ID: rootID, Title: rootID, PortalType: "Site"}},
		},
		rootUID: rootUID,
	}
}

func (m *Memory) Root(_ context.Context) (Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodes[m.rootUID].node, nil
}

func (m *Memory) GetByUID(_ context.Context, uid string) (Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.nodes[uid]
	if !exists {
		return Node{}, model.ErrNodeNotFound
	}
	return entry.node, nil
}

func (m *Memory) GetChild(_ context.Context, containerUID string, id string) (Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.childLocked(containerUID, id)
}

func (m *Memory) childLocked(containerUID string, id string) (Node, error) {
	container, exists := m.nodes[containerUID]
	if !exists {
		return Node{}, model.ErrNodeNotFound
	}

	for _, childUID := range container.children {
		if m.nodes[childUID].node.ID == id {
			return m.nodes[childUID].node, nil
		}
	}
	return Node{}, model.ErrNodeNotFound
}

func (m *Memory) Resolve(_ context.Context, startUID string, segments []string) (Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	current, exists := m.nodes[startUID]
	if !exists {
		return Node{}, model.ErrNodeNotFound
	}

	node := current.node
	for _, segment := range segments {
		child, err := m.childLocked(node.UID, segment)
		if err != nil {
			return Node{}, err
		}
		node = child
	}
	return node, nil
}

func (m *Memory) Path(_ context.Context, uid string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.nodes[uid]
	if !exists {
		return "", model.ErrNodeNotFound
	}

	segments := []string{}
	for {
		segments = append([]string{entry.node.ID}, segments...)
		if entry.node.ParentUID == "" {
			break
		}
		parent, ok := m.nodes[entry.node.ParentUID]
		if !ok {
			return "", model.ErrNodeNotFound
		}
		entry = parent
	}

	path := ""
	for _, segment := range segments {
		path += "/" + segment
	}
	return path, nil
}

func (m *Memory) ChildIDs(_ context.Context, uid string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.nodes[uid]
	if !exists {
		return nil, model.ErrNodeNotFound
	}

	ids := make([]string, 0, len(entry.children))
	for _, childUID := range entry.children {
		ids = append(ids, m.nodes[childUID].node.ID)
	}
	return ids, nil
}

func (m *Memory) Create(_ context.Context, parentUID string, node Node) (Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	parent, exists := m.nodes[parentUID]
	if !exists {
		return Node{}, model.ErrParentNotFound
	}

	if _, err := m.childLocked(parentUID, node.ID); err == nil {
		return Node{}, fmt.Errorf("%w: %q", model.ErrNodeExists, node.ID)
	}

	if node.UID == "" {
		node.UID = uuid.NewString()
	}
	node.ParentUID = parentUID

	m.nodes[node.UID] = &memoryNode{node: node}
	parent.children = append(parent.children, node.UID)
	return node, nil
}

func (m *Memory) Move(_ context.Context, uid string, newParentUID string) (Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.nodes[uid]
	if !exists {
		return Node{}, model.ErrNodeNotFound
	}
	if entry.node.ParentUID == "" {
		return Node{}, model.ErrRootImmutable
	}

	target, exists := m.nodes[newParentUID]
	if !exists {
		return Node{}, model.ErrParentNotFound
	}

	m.detachLocked(uid)

	// Paste semantics: a colliding id gets a fresh one instead of failing.
	pastedID := entry.node.ID
	for attempt := 1; ; attempt++ {
		if _, err := m.childLocked(newParentUID, pastedID); err != nil {
			break
		}
		pastedID = fmt.Sprintf("copy%d_of_%s", attempt, entry.node.ID)
	}

	entry.node.ID = pastedID
	entry.node.ParentUID = newParentUID
	target.children = append(target.children, uid)
	return entry.node, nil
}

func (m *Memory) Rename(_ context.Context, uid string, newID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.nodes[uid]
	if !exists {
		return model.ErrNodeNotFound
	}
	if entry.node.ParentUID == "" {
		return model.ErrRootImmutable
	}

	if existing, err := m.childLocked(entry.node.ParentUID, newID); err == nil && existing.UID != uid {
		return fmt.Errorf("%w: %q", model.ErrNodeExists, newID)
	}

	entry.node.ID = newID
	return nil
}

func (m *Memory) Delete(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.nodes[uid]
	if !exists {
		return model.ErrNodeNotFound
	}
	if entry.node.ParentUID == "" {
		return model.ErrRootImmutable
	}

	m.detachLocked(uid)
	m.deleteSubtreeLocked(uid)
	return nil
}

func (m *Memory) detachLocked(uid string) {
	entry := m.nodes[uid]
	parent, exists := m.nodes[entry.node.ParentUID]
	if !exists {
		return
	}

	for i, childUID := range parent.children {
		if childUID == uid {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
}

func (m *Memory) deleteSubtreeLocked(uid string) {
	entry := m.nodes[uid]
	for _, childUID := range entry.children {
		m.deleteSubtreeLocked(childUID)
	}
	delete(m.nodes, uid)
}
