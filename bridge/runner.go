package bridge

import (
	"context"

	"github.com/jessevdk/go-flags"
)

// Run parses CLI arguments, negotiates the remote transport and serves the
// stdio endpoint until the local side goes away.
func Run(args []string) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	ctx := context.Background()
	service, err := New(ctx, options)
	if err != nil {
		return err
	}
	defer service.Close()

	srv := service.Stdio(ctx)
	return srv.ListenAndServe()
}
