package interpreter

import (
	"database/sql"
	"fmt"

	"github.com/corvidlang/corvid/internal/rt"
	_ "modernc.org/sqlite"
)

// sqliteDB is the HostObject payload behind the "SQLiteDB" class: the one
// allow-listable host class a corvid.yaml can opt into for programs that
// need real persistent storage behind the interop gateway (§4.I, domain
// stack). Registered into the constructors/instanceMethods tables exactly
// like any other host class — nothing about it is special-cased in the
// evaluator.
type sqliteDB struct{ db *sql.DB }

func init() {
	constructors["SQLiteDB"] = func(ctx *rt.Context, args []rt.Value) rt.Value {
		path := ":memory:"
		if len(args) >= 1 {
			if s, ok := args[0].(*rt.Str); ok {
				path = s.Val
			}
		}
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return rt.NewErr("SQLiteDB open failed: %v", err)
		}
		return &rt.HostObject{Go: &sqliteDB{db: db}, Class: "SQLiteDB"}
	}

	instanceMethods["SQLiteDB"] = map[string]hostMethod{
		"exec": func(ctx *rt.Context, target rt.Value, args []rt.Value) rt.Value {
			h := target.(*rt.HostObject).Go.(*sqliteDB)
			if len(args) < 1 {
				return rt.NewErr("exec requires a SQL string")
			}
			sqlStr, ok := args[0].(*rt.Str)
			if !ok {
				return rt.NewErr("exec requires a SQL string")
			}
			res, err := h.db.Exec(sqlStr.Val)
			if err != nil {
				return rt.NewErr("sql exec failed: %v", err)
			}
			n, _ := res.RowsAffected()
			return &rt.Int{Val: n}
		},
		"query": func(ctx *rt.Context, target rt.Value, args []rt.Value) rt.Value {
			h := target.(*rt.HostObject).Go.(*sqliteDB)
			if len(args) < 1 {
				return rt.NewErr("query requires a SQL string")
			}
			sqlStr, ok := args[0].(*rt.Str)
			if !ok {
				return rt.NewErr("query requires a SQL string")
			}
			rows, err := h.db.Query(sqlStr.Val)
			if err != nil {
				return rt.NewErr("sql query failed: %v", err)
			}
			defer rows.Close()
			cols, _ := rows.Columns()
			var out []rt.Value
			for rows.Next() {
				scanDest := make([]interface{}, len(cols))
				scanVals := make([]interface{}, len(cols))
				for i := range scanDest {
					scanDest[i] = &scanVals[i]
				}
				if err := rows.Scan(scanDest...); err != nil {
					return rt.NewErr("sql scan failed: %v", err)
				}
				row := rt.EmptyMap
				for i, c := range cols {
					row = row.Assoc(&rt.Keyword{Name: c}, &rt.Str{Val: fmt.Sprintf("%v", scanVals[i])})
				}
				out = append(out, row)
			}
			return rt.SliceToList(out)
		},
		"close": func(ctx *rt.Context, target rt.Value, args []rt.Value) rt.Value {
			h := target.(*rt.HostObject).Go.(*sqliteDB)
			if err := h.db.Close(); err != nil {
				return rt.NewErr("close failed: %v", err)
			}
			return rt.NilValue
		},
	}
}
