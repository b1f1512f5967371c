package stmtdoc

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/coregx/sqlbuild/internal/core"
)

// Param is one bound parameter, kept in placeholder order.
type Param struct {
	Name  string      `json:"name" yaml:"name"`
	Value interface{} `json:"value" yaml:"value"`
}

// Result is one rendered statement.
type Result struct {
	File       string        `json:"file" yaml:"file"`
	Name       string        `json:"name,omitempty" yaml:"name,omitempty"`
	Operation  string        `json:"operation" yaml:"operation"`
	Dialect    string        `json:"dialect" yaml:"dialect"`
	SQL        string        `json:"sql" yaml:"sql"`
	Params     []Param       `json:"params" yaml:"params"`
	Positional string        `json:"positional,omitempty" yaml:"positional,omitempty"`
	Args       []interface{} `json:"args,omitempty" yaml:"args,omitempty"`
}

// BuilderFunc returns the builder for a document. dialect is the document's
// own dialect override, empty when it has none.
type BuilderFunc func(dialect string) (*core.Builder, error)

// Options controls RenderFiles.
type Options struct {
	// Positional adds the dialect's positional form of every statement.
	Positional bool
	// Concurrency bounds the number of files rendered at once
	// (default GOMAXPROCS).
	Concurrency int
}

// RenderFiles renders every statement of every file. Files are rendered
// concurrently; results keep file order, then statement order. The first
// error cancels the remaining work.
func RenderFiles(ctx context.Context, fs afero.Fs, paths []string, newBuilder BuilderFunc, opts Options) ([]Result, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	perFile := make([][]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results, err := renderFile(ctx, fs, path, newBuilder, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			perFile[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Result
	for _, results := range perFile {
		out = append(out, results...)
	}
	return out, nil
}

func renderFile(ctx context.Context, fs afero.Fs, path string, newBuilder BuilderFunc, opts Options) ([]Result, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	b, err := newBuilder(doc.Dialect)
	if err != nil {
		return nil, err
	}
	b = b.WithContext(ctx)

	results := make([]Result, 0, len(doc.Statements))
	for i := range doc.Statements {
		entry := &doc.Statements[i]
		stmt, err := entry.Build(b)
		if err != nil {
			if entry.Name != "" {
				return nil, fmt.Errorf("statement %q: %w", entry.Name, err)
			}
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		results = append(results, newResult(path, entry.Name, b, stmt, opts.Positional))
	}
	return results, nil
}

func newResult(path, name string, b *core.Builder, stmt *core.Statement, positional bool) Result {
	r := Result{
		File:      path,
		Name:      name,
		Operation: stmt.Operation,
		Dialect:   b.Policy().Name,
		SQL:       stmt.SQL,
		Params:    make([]Param, 0, stmt.Params.Len()),
	}
	stmt.Params.Each(func(name string, value interface{}) {
		r.Params = append(r.Params, Param{Name: name, Value: value})
	})
	if positional {
		r.Positional, r.Args = stmt.Positional()
	}
	return r
}
