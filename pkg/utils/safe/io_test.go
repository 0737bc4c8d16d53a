package safe_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/foodrec/pkg/utils/safe"
)

type closer struct {
	called int
	err    error
}

func (c *closer) Close() error {
	c.called++
	return c.err
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	c := &closer{}
	safe.Close(ctx, "repository", c)
	gt.Number(t, c.called).Equal(1)

	failing := &closer{err: errors.New("connection reset")}
	safe.Close(ctx, "cache", failing)
	gt.Number(t, failing.called).Equal(1)

	safe.Close(ctx, "nothing", nil)
}
