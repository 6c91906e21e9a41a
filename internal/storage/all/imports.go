// Package all wires every built-in storage backend into the storage factory.
//
// It exists purely for side effects: a blank import runs each backend's init,
// which registers its factory and DDL dialect. Importing it makes the kinds
// "postgres", "mssql", "mysql" and "sqlite" available to storage.New.
//
//	import _ "dwetl/internal/storage/all"
package all

import (
	_ "dwetl/internal/storage/mssql"
	_ "dwetl/internal/storage/mysql"
	_ "dwetl/internal/storage/postgres"
	_ "dwetl/internal/storage/sqlite"
)
