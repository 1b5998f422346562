package schedule

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"channel-scheduler/internal/tree"
)

var (
	ErrNotFound      = errors.New("node not found")
	ErrConflict      = errors.New("channel reference already in use")
	ErrInvalidParent = errors.New("parent does not accept this node type")
)

// DB is implemented by *pgxpool.Pool and by pgxmock pools.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NodeStore is the persistence behind the node API.
type NodeStore interface {
	ListNodes(ctx context.Context) ([]tree.Node, error)
	CreateNode(ctx context.Context, n tree.Node) (tree.Node, error)
	UpdateNode(ctx context.Context, id string, p tree.Patch) (tree.Node, error)
	DeleteNodes(ctx context.Context, ids []string) (int64, error)
}

type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const nodeColumns = `id::text, COALESCE(parent_id::text, ''), node_type, name, position, active,
	schedule, channel_ref, carousel_kind, carousel_label, content_ref`

func scanNode(row pgx.Row) (tree.Node, error) {
	var (
		n   tree.Node
		typ string
	)
	err := row.Scan(
		&n.ID,
		&n.ParentID,
		&typ,
		&n.Name,
		&n.Order,
		&n.Active,
		&n.Schedule,
		&n.ChannelRef,
		&n.CarouselKind,
		&n.CarouselLabel,
		&n.ContentRef,
	)
	n.Type = tree.NodeType(typ)
	return n, err
}

func (s *PostgresStore) ListNodes(ctx context.Context) ([]tree.Node, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+nodeColumns+`
		FROM schedule_nodes
		ORDER BY parent_id NULLS FIRST, position ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := []tree.Node{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// checkParent verifies that parentID may hold a node of type typ.
func (s *PostgresStore) checkParent(ctx context.Context, typ tree.NodeType, parentID string) error {
	want, ok := typ.ParentType()
	if !ok {
		if parentID != "" {
			return ErrInvalidParent
		}
		return nil
	}
	if parentID == "" {
		return ErrInvalidParent
	}
	var got string
	err := s.db.QueryRow(ctx, `SELECT node_type FROM schedule_nodes WHERE id = $1`, parentID).Scan(&got)
	if err != nil {
		if errors.Is(mapErr(err), ErrNotFound) {
			return fmt.Errorf("%w: parent %s", ErrNotFound, parentID)
		}
		return err
	}
	if tree.NodeType(got) != want {
		return ErrInvalidParent
	}
	return nil
}

func (s *PostgresStore) CreateNode(ctx context.Context, n tree.Node) (tree.Node, error) {
	if err := s.checkParent(ctx, n.Type, n.ParentID); err != nil {
		return tree.Node{}, err
	}
	created, err := scanNode(s.db.QueryRow(ctx, `
		INSERT INTO schedule_nodes (parent_id, node_type, name, position, active, schedule,
			channel_ref, carousel_kind, carousel_label, content_ref)
		VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+nodeColumns,
		n.ParentID, string(n.Type), n.Name, n.Order, n.Active, n.Schedule,
		n.ChannelRef, n.CarouselKind, n.CarouselLabel, n.ContentRef,
	))
	if err != nil {
		return tree.Node{}, mapErr(err)
	}
	return created, nil
}

// UpdateNode applies the set fields of p. A parent change is checked against
// the node's type first.
func (s *PostgresStore) UpdateNode(ctx context.Context, id string, p tree.Patch) (tree.Node, error) {
	if p.ParentID != nil {
		var typ string
		err := s.db.QueryRow(ctx, `SELECT node_type FROM schedule_nodes WHERE id = $1`, id).Scan(&typ)
		if err != nil {
			return tree.Node{}, mapErr(err)
		}
		if err := s.checkParent(ctx, tree.NodeType(typ), *p.ParentID); err != nil {
			return tree.Node{}, err
		}
	}

	setParts, args := patchColumns(p)
	if len(setParts) == 0 {
		n, err := scanNode(s.db.QueryRow(ctx, `SELECT `+nodeColumns+` FROM schedule_nodes WHERE id = $1`, id))
		return n, mapErr(err)
	}
	args = append(args, id)
	sql := `UPDATE schedule_nodes SET ` + strings.Join(setParts, ", ") + `, updated_at = now()
		WHERE id = $` + strconv.Itoa(len(args)) + `
		RETURNING ` + nodeColumns
	n, err := scanNode(s.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return tree.Node{}, mapErr(err)
	}
	return n, nil
}

// patchColumns lists the SET assignments in a fixed column order.
func patchColumns(p tree.Patch) ([]string, []any) {
	var (
		setParts []string
		args     []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		setParts = append(setParts, col+" = $"+strconv.Itoa(len(args)))
	}
	if p.ParentID != nil {
		args = append(args, *p.ParentID)
		setParts = append(setParts, "parent_id = NULLIF($"+strconv.Itoa(len(args))+", '')::uuid")
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Order != nil {
		add("position", *p.Order)
	}
	if p.Active != nil {
		add("active", *p.Active)
	}
	if p.Schedule != nil {
		add("schedule", *p.Schedule)
	}
	if p.ChannelRef != nil {
		add("channel_ref", *p.ChannelRef)
	}
	if p.CarouselKind != nil {
		add("carousel_kind", *p.CarouselKind)
	}
	if p.CarouselLabel != nil {
		add("carousel_label", *p.CarouselLabel)
	}
	if p.ContentRef != nil {
		add("content_ref", *p.ContentRef)
	}
	return setParts, args
}

// DeleteNodes removes ids; descendants follow through ON DELETE CASCADE.
// Unknown ids are ignored.
func (s *PostgresStore) DeleteNodes(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.Exec(ctx, `DELETE FROM schedule_nodes WHERE id::text = ANY($1)`, ids)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected(), nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrConflict
		case "22P02", "23503":
			// malformed uuid, or a parent that vanished meanwhile
			return ErrNotFound
		}
	}
	return err
}
