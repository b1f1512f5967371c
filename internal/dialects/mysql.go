package dialects

func init() {
	RegisterDialect(Policy{
		ID:               MySQL,
		Name:             "mysql",
		Limit:            LimitTrailing,
		InsertIgnore:     IgnoreKeyword,
		Returning:        ReturningLastInsertID,
		DeleteOrderLimit: true,
		PlaceholderStyle: PlaceholderQuestion,
	}, "mysql")

	// MariaDB 10.5+ supports INSERT ... RETURNING.
	RegisterDialect(Policy{
		ID:               MariaDB,
		Name:             "mariadb",
		Limit:            LimitTrailing,
		InsertIgnore:     IgnoreKeyword,
		Returning:        ReturningClause,
		DeleteOrderLimit: true,
		PlaceholderStyle: PlaceholderQuestion,
	}, "mariadb")
}
