package dialects

func init() {
	RegisterDialect(Policy{
		ID:               PostgreSQL,
		Name:             "postgres",
		Limit:            LimitTrailing,
		InsertIgnore:     IgnoreOnConflict,
		Returning:        ReturningClause,
		PlaceholderStyle: PlaceholderDollar,
	}, "postgres", "postgresql", "pgx", "pq")
}
