package dialect

// Built-in dialects. These are the flavors the backend accepts in a connect
// request.
var (
	builtinPostgres = NewDialect("postgresql").
			Display("PostgreSQL").
			Port(5432).
			Aliases("postgres").
			Build()

	builtinMySQL = NewDialect("mysql").
			Display("MySQL").
			Port(3306).
			Build()

	builtinMSSQL = NewDialect("mssql").
			Display("SQL Server").
			Port(1433).
			Build()

	builtinSQLite = NewDialect("sqlite").
			Display("SQLite").
			FileBased().
			Build()
)

func init() {
	Register(builtinPostgres)
	Register(builtinMySQL)
	Register(builtinMSSQL)
	Register(builtinSQLite)
}
