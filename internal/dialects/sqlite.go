package dialects

func init() {
	// DELETE ... LIMIT needs SQLITE_ENABLE_UPDATE_DELETE_LIMIT, which stock builds lack.
	RegisterDialect(Policy{
		ID:               SQLite,
		Name:             "sqlite",
		Limit:            LimitTrailing,
		InsertIgnore:     IgnoreOrIgnore,
		Returning:        ReturningClause,
		PlaceholderStyle: PlaceholderQuestion,
	}, "sqlite", "sqlite3")
}
