// Package sqlbuild renders SELECT, INSERT, UPDATE and DELETE statements from
// literal condition trees. Every built statement is a SQL string with named
// ":name" placeholders plus the parameter values bound to them; values are
// never inlined into the SQL text.
//
// Dialect differences (row limiting, insert-ignore, RETURNING, ORDER BY and
// LIMIT on DELETE, positional placeholders) come from per-dialect policy
// tables.
//
//	b := sqlbuild.New(sqlbuild.MySQL)
//	stmt, err := b.Select("name", "surname").
//	    From("users").
//	    Where(sqlbuild.C("id", "<", 120)).
//	    Build()
//	// stmt.SQL:    SELECT name, surname FROM users WHERE (id < :id);
//	// stmt.Params: {":id": 120}
package sqlbuild

import (
	"github.com/coregx/sqlbuild/internal/core"
	"github.com/coregx/sqlbuild/internal/dialects"
	"github.com/coregx/sqlbuild/internal/logger"
	"github.com/coregx/sqlbuild/internal/security"
	"github.com/coregx/sqlbuild/internal/tracer"
)

type (
	// Builder creates statements for one dialect. Safe for concurrent use.
	Builder = core.Builder
	// Option is a functional option for configuring a Builder.
	Option = core.Option
	// SelectQuery represents a SELECT statement being built.
	SelectQuery = core.SelectQuery
	// InsertQuery represents an INSERT statement being built.
	InsertQuery = core.InsertQuery
	// UpdateQuery represents an UPDATE statement being built.
	UpdateQuery = core.UpdateQuery
	// DeleteQuery represents a DELETE statement being built.
	DeleteQuery = core.DeleteQuery
	// Statement is a built statement with its named parameters.
	Statement = core.Statement
	// Params is the ordered placeholder -> value map of a statement.
	Params = core.Params

	// Condition is a condition tree node written as a nested sequence.
	Condition = core.Condition
	// Identifier marks an operand as a column reference.
	Identifier = core.Identifier
	// Literal marks the first element of a leaf as a bound value.
	Literal = core.Literal
	// Operator is a canonical comparison operator.
	Operator = core.Operator

	// Field is one SELECT field list entry.
	Field = core.Field
	// Order is one ORDER BY entry.
	Order = core.Order
	// Join describes one JOIN clause.
	Join = core.Join
	// Record is an ordered column -> value row.
	Record = core.Record

	// BuildEvent describes one Build call.
	BuildEvent = core.BuildEvent
	// BuildHook is invoked after every Build.
	BuildHook = core.BuildHook
	// Validator checks unbound SQL text in strict mode.
	Validator = core.Validator
	// UnsupportedFeatureError describes a feature a dialect cannot render.
	UnsupportedFeatureError = core.UnsupportedFeatureError

	// Dialect identifies a SQL dialect.
	Dialect = dialects.ID
	// Policy is the rendering table of one dialect.
	Policy = dialects.Policy

	// Logger receives build events at Debug level.
	Logger = logger.Logger
	// Tracer starts one span per Build.
	Tracer = tracer.Tracer
	// Auditor writes an audit trail of built statements.
	Auditor = security.Auditor
	// AuditLevel selects which builds are audited.
	AuditLevel = security.AuditLevel
)

// Supported dialects. Unknown (the zero value) renders with the generic policy.
const (
	Unknown    = dialects.Unknown
	MySQL      = dialects.MySQL
	MariaDB    = dialects.MariaDB
	PostgreSQL = dialects.PostgreSQL
	SQLite     = dialects.SQLite
	SQLServer  = dialects.SQLServer
	Sybase     = dialects.Sybase
	Oracle     = dialects.Oracle
	Oracle12c  = dialects.Oracle12c
	DB2        = dialects.DB2
)

// Canonical operators.
const (
	OpEq             = core.OpEq
	OpNotEq          = core.OpNotEq
	OpLess           = core.OpLess
	OpGreater        = core.OpGreater
	OpLessOrEqual    = core.OpLessOrEqual
	OpGreaterOrEqual = core.OpGreaterOrEqual
	OpBetween        = core.OpBetween
	OpNotBetween     = core.OpNotBetween
	OpIn             = core.OpIn
	OpNotIn          = core.OpNotIn
	OpLike           = core.OpLike
	OpNotLike        = core.OpNotLike
	OpPassThrough    = core.OpPassThrough
)

// Audit levels.
const (
	AuditNone   = security.AuditNone
	AuditWrites = security.AuditWrites
	AuditReads  = security.AuditReads
	AuditAll    = security.AuditAll
)

// Sentinel errors.
var (
	ErrInvalidInput       = core.ErrInvalidInput
	ErrUnsupportedDialect = core.ErrUnsupportedDialect
	ErrUnsupportedFeature = core.ErrUnsupportedFeature
	ErrUnsafeInput        = core.ErrUnsafeInput
	ErrUnrecognizedDSN    = dialects.ErrUnrecognizedDSN
	ErrInvalidDSN         = dialects.ErrInvalidDSN
)

// Re-export core functions.
var (
	New           = core.New
	NewForDriver  = core.NewForDriver
	NewRecord     = core.NewRecord
	NewParams     = core.NewParams
	ParseOperator = core.ParseOperator

	// Options
	WithStrict          = core.WithStrict
	WithLogger          = core.WithLogger
	WithSlog            = core.WithSlog
	WithSensitiveFields = core.WithSensitiveFields
	WithTracer          = core.WithTracer
	WithBuildHook       = core.WithBuildHook
	WithValidator       = core.WithValidator
	WithAuditor         = core.WithAuditor

	// Condition helpers
	C     = core.C
	And   = core.And
	Or    = core.Or
	Ident = core.Ident
	Lit   = core.Lit

	// Field helpers
	F     = core.F
	Expr  = core.Expr
	Func  = core.Func
	Count = core.Count
	Sum   = core.Sum
	Avg   = core.Avg
	Min   = core.Min
	Max   = core.Max

	// Dialect resolution
	ParseDialect = dialects.Parse
	DialectFor   = dialects.ForDriver
	FromDSN      = dialects.FromDSN
	Dialects     = dialects.All

	// Observability
	NewOtelTracer  = tracer.NewOtelTracer
	NewSlogAdapter = logger.NewSlogAdapter

	// Auditing
	NewAuditor      = security.NewAuditor
	ParseAuditLevel = security.ParseAuditLevel
	WithUser        = security.WithUser
	WithClientIP    = security.WithClientIP
	WithRequestID   = security.WithRequestID
)
