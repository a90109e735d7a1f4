package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-content-retention/internal/model"
)

const nodeColumns = `uid, COALESCE(parent_uid, ''), node_id, title, portal_type, review_state`

// Postgres stores the content tree as an adjacency list in content_nodes.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func scanNode(row pgx.Row) (Node, error) {
	var node Node
	err := row.Scan(&node.UID, &node.ParentUID, &node.ID, &node.Title, &node.PortalType, &node.ReviewState)
	if errors.Is(err, pgx.ErrNoRows) {
		return Node{}, model.ErrNodeNotFound
	}
	if err != nil {
		return Node{}, fmt.Errorf("scan content node: %w", err)
	}
	return node, nil
}

// EnsureRoot creates the root node with the given id when the tree is empty.
func (r *Postgres) EnsureRoot(ctx context.Context, rootID string) (Node, error) {
	root, err := r.Root(ctx)
	if err == nil {
		return root, nil
	}
	if !errors.Is(err, model.ErrNodeNotFound) {
		return Node{}, err
	}

	root = Node{UID: newUID(), ID: rootID, Title: rootID, PortalType: "Site"}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO content_nodes (uid, parent_uid, node_id, title, portal_type, review_state)
		 VALUES ($1, NULL, $2, $3, $4, '')`,
		root.UID, root.ID, root.Title, root.PortalType)
	if err != nil {
		return Node{}, fmt.Errorf("create root node %q: %w", rootID, err)
	}
	return root, nil
}

func (r *Postgres) Root(ctx context.Context) (Node, error) {
	return scanNode(r.pool.QueryRow(ctx,
		`SELECT `+nodeColumns+` FROM content_nodes WHERE parent_uid IS NULL`))
}

func (r *Postgres) GetByUID(ctx context.Context, uid string) (Node, error) {
	return scanNode(r.pool.QueryRow(ctx,
		`SELECT `+nodeColumns+` FROM content_nodes WHERE uid = $1`, uid))
}

func (r *Postgres) GetChild(ctx context.Context, containerUID string, id string) (Node, error) {
	return scanNode(r.pool.QueryRow(ctx,
		`SELECT `+nodeColumns+` FROM content_nodes WHERE parent_uid = $1 AND node_id = $2`,
		containerUID, id))
}

func (r *Postgres) Resolve(ctx context.Context, startUID string, segments []string) (Node, error) {
	node, err := r.GetByUID(ctx, startUID)
	if err != nil {
		return Node{}, err
	}

	for _, segment := range segments {
		node, err = r.GetChild(ctx, node.UID, segment)
		if err != nil {
			return Node{}, err
		}
	}
	return node, nil
}

func (r *Postgres) Path(ctx context.Context, uid string) (string, error) {
	var path string
	err := r.pool.QueryRow(ctx,
		`WITH RECURSIVE ancestry AS (
		     SELECT uid, parent_uid, node_id, 0 AS depth
		     FROM content_nodes WHERE uid = $1
		     UNION ALL
		     SELECT n.uid, n.parent_uid, n.node_id, a.depth + 1
		     FROM content_nodes n
		     JOIN ancestry a ON n.uid = a.parent_uid
		 )
		 SELECT COALESCE('/' || string_agg(node_id, '/' ORDER BY depth DESC), '') FROM ancestry`, uid).Scan(&path)
	if err != nil {
		return "", fmt.Errorf("resolve path for %q: %w", uid, err)
	}
	if path == "" {
		return "", model.ErrNodeNotFound
	}
	return path, nil
}

func (r *Postgres) ChildIDs(ctx context.Context, uid string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT node_id FROM content_nodes WHERE parent_uid = $1 ORDER BY position`, uid)
	if err != nil {
		return nil, fmt.Errorf("list children of %q: %w", uid, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan child id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Postgres) Create(ctx context.Context, parentUID string, node Node) (Node, error) {
	if _, err := r.GetByUID(ctx, parentUID); err != nil {
		if errors.Is(err, model.ErrNodeNotFound) {
			return Node{}, model.ErrParentNotFound
		}
		return Node{}, err
	}

	if _, err := r.GetChild(ctx, parentUID, node.ID); err == nil {
		return Node{}, fmt.Errorf("%w: %q", model.ErrNodeExists, node.ID)
	}

	if node.UID == "" {
		node.UID = newUID()
	}
	node.ParentUID = parentUID

	_, err := r.pool.Exec(ctx,
		`INSERT INTO content_nodes (uid, parent_uid, node_id, title, portal_type, review_state)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		node.UID, node.ParentUID, node.ID, node.Title, node.PortalType, node.ReviewState)
	if err != nil {
		return Node{}, fmt.Errorf("create content node %q: %w", node.ID, err)
	}
	return node, nil
}

func (r *Postgres) Move(ctx context.Context, uid string, newParentUID string) (Node, error) {
	node, err := r.GetByUID(ctx, uid)
	if err != nil {
		return Node{}, err
	}
	if node.ParentUID == "" {
		return Node{}, model.ErrRootImmutable
	}

	if _, err := r.GetByUID(ctx, newParentUID); err != nil {
		if errors.Is(err, model.ErrNodeNotFound) {
			return Node{}, model.ErrParentNotFound
		}
		return Node{}, err
	}

	// Paste semantics: a colliding id gets a fresh one instead of failing.
	pastedID := node.ID
	for attempt := 1; ; attempt++ {
		if _, err := r.GetChild(ctx, newParentUID, pastedID); errors.Is(err, model.ErrNodeNotFound) {
			break
		} else if err != nil {
			return Node{}, err
		}
		pastedID = fmt.Sprintf("copy%d_of_%s", attempt, node.ID)
	}

	_, err = r.pool.Exec(ctx,
		`UPDATE content_nodes SET parent_uid = $2, node_id = $3 WHERE uid = $1`,
		uid, newParentUID, pastedID)
	if err != nil {
		return Node{}, fmt.Errorf("move content node %q: %w", uid, err)
	}

	node.ParentUID = newParentUID
	node.ID = pastedID
	return node, nil
}

func (r *Postgres) Rename(ctx context.Context, uid string, newID string) error {
	node, err := r.GetByUID(ctx, uid)
	if err != nil {
		return err
	}
	if node.ParentUID == "" {
		return model.ErrRootImmutable
	}

	if existing, err := r.GetChild(ctx, node.ParentUID, newID); err == nil && existing.UID != uid {
		return fmt.Errorf("%w: %q", model.ErrNodeExists, newID)
	}

	_, err = r.pool.Exec(ctx,
		`UPDATE content_nodes SET node_id = $2 WHERE uid = $1`, uid, newID)
	if err != nil {
		return fmt.Errorf("rename content node %q: %w", uid, err)
	}
	return nil
}

func (r *Postgres) Delete(ctx context.Context, uid string) error {
	node, err := r.GetByUID(ctx, uid)
	if err != nil {
		return err
	}
	if node.ParentUID == "" {
		return model.ErrRootImmutable
	}

	_, err = r.pool.Exec(ctx,
		`WITH RECURSIVE subtree AS (
		     SELECT uid FROM content_nodes WHERE uid = $1
		     UNION ALL
		     SELECT n.uid FROM content_nodes n JOIN subtree s ON n.parent_uid = s.uid
		 )
		 DELETE FROM content_nodes WHERE uid IN (SELECT uid FROM subtree)`, uid)
	if err != nil {
		return fmt.Errorf("delete content node %q: %w", uid, err)
	}
	return nil
}
