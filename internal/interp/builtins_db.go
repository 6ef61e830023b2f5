package interp

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// db is the payload behind DbVal: a *sql.DB opened against modernc.org's
// pure-Go sqlite driver, the same way the teacher's builtins_db.go (by way
// of its yaml/csv-adjacent data builtins) keeps one handle per opaque id
// rather than reopening the file on every query.
type db struct {
	id     string
	handle *sql.DB
}

// dbBuiltins covers FORMA's `std.db` surface: open a sqlite file, run a
// read query returning rows, and run a write statement returning an
// affected-row count.
func dbBuiltins() map[string]func(i *Interp, args []Value) (Value, error) {
	return map[string]func(i *Interp, args []Value) (Value, error){
		"db_open": func(i *Interp, args []Value) (Value, error) {
			path, ok := oneStrArg(args)
			if !ok {
				return nil, fmt.Errorf("db_open() takes one Str path")
			}
			handle, err := sql.Open("sqlite", path)
			if err != nil {
				return nil, newErr(ErrHostFailure, token0(), "db_open(%q): %v", path, err)
			}
			if err := handle.Ping(); err != nil {
				return nil, newErr(ErrHostFailure, token0(), "db_open(%q): %v", path, err)
			}
			return Opaque{Tag: DbVal, Data: &db{id: uuid.NewString(), handle: handle}}, nil
		},
		"db_query": func(i *Interp, args []Value) (Value, error) {
			d, queryArgs, ok := dbCallArgs(args)
			if !ok {
				return nil, fmt.Errorf("db_query() takes (Db, Str sql, values...)")
			}
			sqlText := queryArgs[0].(Str).V
			params := toSQLParams(queryArgs[1:])
			rows, err := d.handle.Query(sqlText, params...)
			if err != nil {
				return nil, newErr(ErrHostFailure, token0(), "db_query: %v", err)
			}
			defer rows.Close()
			cols, err := rows.Columns()
			if err != nil {
				return nil, newErr(ErrHostFailure, token0(), "db_query: %v", err)
			}
			var out []Value
			for rows.Next() {
				scanTargets := make([]interface{}, len(cols))
				scanVals := make([]interface{}, len(cols))
				for idx := range scanTargets {
					scanTargets[idx] = &scanVals[idx]
				}
				if err := rows.Scan(scanTargets...); err != nil {
					return nil, newErr(ErrHostFailure, token0(), "db_query: %v", err)
				}
				fields := map[string]Value{}
				for idx, col := range cols {
					fields[col] = fromSQLValue(scanVals[idx])
				}
				out = append(out, Struct{TypeName: "Row", Fields: fields})
			}
			return List{Elements: out}, nil
		},
		"db_exec": func(i *Interp, args []Value) (Value, error) {
			d, execArgs, ok := dbCallArgs(args)
			if !ok {
				return nil, fmt.Errorf("db_exec() takes (Db, Str sql, values...)")
			}
			sqlText := execArgs[0].(Str).V
			params := toSQLParams(execArgs[1:])
			result, err := d.handle.Exec(sqlText, params...)
			if err != nil {
				return nil, newErr(ErrHostFailure, token0(), "db_exec: %v", err)
			}
			affected, _ := result.RowsAffected()
			return Int{V: affected}, nil
		},
		"db_close": func(i *Interp, args []Value) (Value, error) {
			d, ok := dbArg(args, 0)
			if !ok {
				return nil, fmt.Errorf("db_close() takes a Db")
			}
			if err := d.handle.Close(); err != nil {
				return nil, newErr(ErrHostFailure, token0(), "db_close: %v", err)
			}
			return Unit{}, nil
		},
	}
}

func dbArg(args []Value, idx int) (*db, bool) {
	if idx >= len(args) {
		return nil, false
	}
	op, ok := args[idx].(Opaque)
	if !ok || op.Tag != DbVal {
		return nil, false
	}
	d, ok := op.Data.(*db)
	return d, ok
}

func dbCallArgs(args []Value) (*db, []Value, bool) {
	if len(args) < 2 {
		return nil, nil, false
	}
	d, ok := dbArg(args, 0)
	if !ok {
		return nil, nil, false
	}
	if _, ok := args[1].(Str); !ok {
		return nil, nil, false
	}
	return d, args[1:], true
}

func toSQLParams(vals []Value) []interface{} {
	out := make([]interface{}, len(vals))
	for idx, v := range vals {
		switch x := v.(type) {
		case Int:
			out[idx] = x.V
		case Float:
			out[idx] = x.V
		case Bool:
			out[idx] = x.V
		case Str:
			out[idx] = x.V
		default:
			out[idx] = x.Inspect()
		}
	}
	return out
}

func fromSQLValue(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return None{}
	case int64:
		return Int{V: x}
	case float64:
		return Float{V: x}
	case bool:
		return Bool{V: x}
	case string:
		return Str{V: x}
	case []byte:
		return Str{V: string(x)}
	default:
		return Str{V: fmt.Sprintf("%v", x)}
	}
}
