package dialects

func init() {
	RegisterDialect(Policy{
		ID:               SQLServer,
		Name:             "sqlserver",
		Limit:            LimitTop,
		Returning:        ReturningOutput,
		PlaceholderStyle: PlaceholderAtP,
	}, "sqlserver", "mssql", "azuresql")

	RegisterDialect(Policy{
		ID:               Sybase,
		Name:             "sybase",
		Limit:            LimitTop,
		PlaceholderStyle: PlaceholderQuestion,
	}, "sybase", "ase", "tds")
}
