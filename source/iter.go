package source

import (
	"context"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/pipeline"
)

type sourceIter struct {
	src Source
}

// Iter adapts src to a pipeline iterator. Close closes the source and
// returns its captured error, if any.
func Iter(src Source) pipeline.Iterator[atom.Atom] {
	return &sourceIter{src: src}
}

func (it *sourceIter) Next(ctx context.Context) (atom.Atom, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	a, ok := it.src.Next()
	return a, ok, nil
}

func (it *sourceIter) Close() error {
	_, err := it.src.Close()
	return err
}
