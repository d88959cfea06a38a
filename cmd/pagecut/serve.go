package main

import (
	pagecuthttp "github.com/fwojciec/pagecut/http"
	pcprom "github.com/fwojciec/pagecut/prometheus"
)

// Run executes the serve command. It blocks until the context ends.
func (c *ServeCmd) Run(deps *Dependencies) error {
	service := pcprom.NewReadingService(deps.Service)
	srv := pagecuthttp.NewServer(service,
		pagecuthttp.WithLogger(deps.Logger),
		pagecuthttp.WithMetrics(service.Handler()),
	)
	return srv.ListenAndServe(deps.Ctx, c.Addr)
}
