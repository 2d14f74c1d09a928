package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonny/hookbridge/internal/domain/model"
	"github.com/jonny/hookbridge/internal/domain/port/outbound"
)

const defaultAuditLimit = 50

// AuditRepo implements outbound.AuditRepository using SQLite.
type AuditRepo struct {
	db *sql.DB
}

var _ outbound.AuditRepository = (*AuditRepo)(nil)

// NewAuditRepo creates a new AuditRepo backed by the given store.
func NewAuditRepo(store *Store) *AuditRepo {
	return &AuditRepo{db: store.DB}
}

// Create inserts a new audit log row.
func (r *AuditRepo) Create(ctx context.Context, log model.AuditLog) error {
	meta, err := marshalStringMap(log.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling audit metadata: %w", err)
	}

	const q = `INSERT INTO audit_logs
		(id, invocation_id, event_type, session_id, tool_name, actor, description, metadata, created_at)
		VALUES (?,?,?,?,?,?,?,?,?)`

	_, err = r.db.ExecContext(ctx, q,
		log.ID, log.InvocationID, string(log.EventType),
		log.SessionID, log.ToolName,
		log.Actor, log.Description,
		meta, log.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting audit log: %w", err)
	}
	return nil
}

// List returns the most recent audit logs matching filter, newest first.
func (r *AuditRepo) List(ctx context.Context, filter outbound.AuditFilter) ([]model.AuditLog, error) {
	where, args := buildAuditWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	q := `SELECT id, invocation_id, event_type, session_id, tool_name, actor, description, metadata, created_at
		FROM audit_logs` + where + ` ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, q, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("listing audit logs: %w", err)
	}
	defer rows.Close()

	var items []model.AuditLog
	for rows.Next() {
		l, err := scanAuditLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning audit log: %w", err)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit logs: %w", err)
	}
	return items, nil
}

// --- helpers ---

type auditScanner interface {
	Scan(dest ...any) error
}

func scanAuditLog(s auditScanner) (model.AuditLog, error) {
	var l model.AuditLog
	var eventType, metaJSON string

	err := s.Scan(
		&l.ID, &l.InvocationID, &eventType,
		&l.SessionID, &l.ToolName,
		&l.Actor, &l.Description,
		&metaJSON, &l.CreatedAt,
	)
	if err != nil {
		return model.AuditLog{}, err
	}
	l.EventType = model.AuditEventType(eventType)
	if err := json.Unmarshal([]byte(metaJSON), &l.Metadata); err != nil {
		l.Metadata = make(map[string]string)
	}
	return l, nil
}

func buildAuditWhere(f outbound.AuditFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, f.SessionID)
	}
	if f.ToolName != "" {
		clauses = append(clauses, "tool_name = ?")
		args = append(args, f.ToolName)
	}
	if f.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.Since.UTC())
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func marshalStringMap(m map[string]string) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
