package dialects

func init() {
	// Oracle before 12c has no row-limiting clause.
	RegisterDialect(Policy{
		ID:               Oracle,
		Name:             "oracle",
		Limit:            LimitRownum,
		PlaceholderStyle: PlaceholderColon,
	}, "oci8")

	RegisterDialect(Policy{
		ID:               Oracle12c,
		Name:             "oracle12c",
		Limit:            LimitFetchFirst,
		PlaceholderStyle: PlaceholderColon,
	}, "godror", "goracle")

	RegisterDialect(Policy{
		ID:               DB2,
		Name:             "db2",
		Limit:            LimitFetchFirst,
		PlaceholderStyle: PlaceholderQuestion,
	}, "go_ibm_db", "db2")
}
