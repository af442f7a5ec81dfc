// Package catalog wraps the fixed dictionary queries the console uses to
// browse schema objects, their DDL and procedure signatures.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/TechXTT/oraconsole/pkg/session"
)

// ErrUnexpectedValue reports a dictionary row with an unexpected shape.
var ErrUnexpectedValue = errors.New("catalog: unexpected value")

// ErrNoResultSet reports a dictionary query that produced no cursor.
var ErrNoResultSet = errors.New("catalog: query returned no result set")

// Executor runs statements on a session. *session.Registry satisfies it.
type Executor interface {
	Execute(ctx context.Context, id session.ID, query string, opts ...session.ExecOption) (*session.Result, error)
}

// Catalog issues dictionary queries on one session.
type Catalog struct {
	exec Executor
	id   session.ID
}

// New returns a Catalog bound to session id.
func New(exec Executor, id session.ID) *Catalog {
	return &Catalog{exec: exec, id: id}
}

// ObjectRef names a schema object.
type ObjectRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// Procedure is one packaged or standalone subprogram.
type Procedure struct {
	Owner        string `json:"owner"`
	Package      string `json:"package"`
	Name         string `json:"name"`
	ObjectID     int64  `json:"objectId"`
	SubprogramID int64  `json:"subprogramId"`
	Overload     string `json:"overload,omitempty"`
}

const completionBlock = `DECLARE
  c1 SYS_REFCURSOR;
BEGIN
  OPEN c1 FOR select table_name name from user_tables
    union
  select object_name || '.' || procedure_name from user_procedures where procedure_name is not null
    union
  select object_name from user_procedures where procedure_name is null;
  DBMS_SQL.RETURN_RESULT(c1);
END;
`

// completionSeeds are always offered for completion.
var completionSeeds = []string{"DUAL", "DBMS_SQL.RETURN_RESULT"}

// CompletionObjects returns the names offered for editor completion: the
// seeds, then the user's tables and procedures.
func (c *Catalog) CompletionObjects(ctx context.Context) ([]string, error) {
	res, err := c.exec.Execute(ctx, c.id, completionBlock)
	if err != nil {
		return nil, err
	}

	objects := append([]string(nil), completionSeeds...)
	for _, row := range res.Rows() {
		if len(row) == 0 {
			continue
		}
		if name, ok := row[0].(string); ok {
			objects = append(objects, name)
		}
	}
	return objects, nil
}

const objectsQuery = "select OBJECT_TYPE, OWNER, OBJECT_NAME from ALL_OBJECTS where ORACLE_MAINTAINED='N' order by OBJECT_TYPE, OWNER, OBJECT_NAME"

// Objects returns the non Oracle-maintained objects grouped by object type.
func (c *Catalog) Objects(ctx context.Context) (map[string][]ObjectRef, error) {
	res, err := c.exec.Execute(ctx, c.id, objectsQuery, session.WithNoLimit())
	if err != nil {
		return nil, err
	}

	objects := make(map[string][]ObjectRef)
	for _, row := range res.Rows() {
		if len(row) != 3 {
			return nil, fmt.Errorf("%w: objects row has %d columns", ErrUnexpectedValue, len(row))
		}
		typ, err := asString(row[0])
		if err != nil {
			return nil, err
		}
		owner, err := asString(row[1])
		if err != nil {
			return nil, err
		}
		name, err := asString(row[2])
		if err != nil {
			return nil, err
		}
		objects[typ] = append(objects[typ], ObjectRef{Owner: owner, Name: name})
	}
	return objects, nil
}

const ddlQuery = "select DBMS_METADATA.GET_DDL(:object_type, :name, :owner) from DUAL"

// DDL returns the DDL text of one object. objectType is the OBJECT_TYPE
// value from ALL_OBJECTS, e.g. "PACKAGE BODY".
func (c *Catalog) DDL(ctx context.Context, objectType, owner, name string) (string, error) {
	binds := map[string]any{
		"object_type": metadataType(objectType),
		"name":        name,
		"owner":       owner,
	}
	res, err := c.exec.Execute(ctx, c.id, ddlQuery, session.WithBinds(binds), session.WithNoLimit())
	if err != nil {
		return "", err
	}

	rows := res.Rows()
	if len(rows) == 0 || len(rows[0]) == 0 {
		return "", fmt.Errorf("%w: no DDL for %s %s.%s", ErrUnexpectedValue, objectType, owner, name)
	}
	switch ddl := rows[0][0].(type) {
	case string:
		return ddl, nil
	case []byte:
		return string(ddl), nil
	default:
		return "", fmt.Errorf("%w: DDL is %T", ErrUnexpectedValue, ddl)
	}
}

// metadataType maps ALL_OBJECTS.OBJECT_TYPE onto the names DBMS_METADATA
// expects, which use underscores instead of spaces.
func metadataType(objectType string) string {
	return strings.ReplaceAll(strings.TrimSpace(objectType), " ", "_")
}

const proceduresQuery = `select p.OWNER
     , p.OBJECT_NAME
     , p.PROCEDURE_NAME
     , p.OBJECT_ID
     , p.SUBPROGRAM_ID
     , p.OVERLOAD
  from ALL_PROCEDURES p
  join ALL_OBJECTS o
    on p.OBJECT_ID = o.OBJECT_ID
   and o.ORACLE_MAINTAINED = 'N'
where p.PROCEDURE_NAME is not null`

// Procedures returns every packaged subprogram outside Oracle-maintained schemas.
func (c *Catalog) Procedures(ctx context.Context) ([]Procedure, error) {
	res, err := c.exec.Execute(ctx, c.id, proceduresQuery, session.WithNoLimit())
	if err != nil {
		return nil, err
	}

	var procedures []Procedure
	for _, row := range res.Rows() {
		p, err := procedureFromRow(row)
		if err != nil {
			return nil, err
		}
		procedures = append(procedures, p)
	}
	return procedures, nil
}

func procedureFromRow(row []any) (Procedure, error) {
	if len(row) != 6 {
		return Procedure{}, fmt.Errorf("%w: procedures row has %d columns", ErrUnexpectedValue, len(row))
	}

	var (
		p   Procedure
		err error
	)
	if p.Owner, err = asString(row[0]); err != nil {
		return Procedure{}, err
	}
	if p.Package, err = asString(row[1]); err != nil {
		return Procedure{}, err
	}
	if p.Name, err = asString(row[2]); err != nil {
		return Procedure{}, err
	}
	if p.ObjectID, err = asInt64(row[3]); err != nil {
		return Procedure{}, err
	}
	if p.SubprogramID, err = asInt64(row[4]); err != nil {
		return Procedure{}, err
	}
	if row[5] != nil {
		if p.Overload, err = asString(row[5]); err != nil {
			return Procedure{}, err
		}
	}
	return p, nil
}

const argumentsQuery = "SELECT POSITION, ARGUMENT_NAME, DATA_TYPE, DEFAULTED, IN_OUT, DATA_LENGTH, DATA_PRECISION, DATA_SCALE FROM ALL_ARGUMENTS where OBJECT_ID = :objectid and SUBPROGRAM_ID = :subprogramid order by POSITION"

// Arguments returns the argument list of one subprogram.
func (c *Catalog) Arguments(ctx context.Context, objectID, subprogramID int64) (*session.ResultSet, error) {
	binds := map[string]any{
		"objectid":     objectID,
		"subprogramid": subprogramID,
	}
	res, err := c.exec.Execute(ctx, c.id, argumentsQuery, session.WithBinds(binds))
	if err != nil {
		return nil, err
	}
	if len(res.Data) == 0 {
		return nil, ErrNoResultSet
	}
	return &res.Data[0], nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: want string, got %T", ErrUnexpectedValue, v)
	}
	return s, nil
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrUnexpectedValue, n)
		}
		return int64(n), nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrUnexpectedValue, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: want number, got %T", ErrUnexpectedValue, v)
	}
}
