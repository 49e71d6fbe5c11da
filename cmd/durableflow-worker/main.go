// The MIT License
//
// Copyright (c) 2020 Temporal Technologies Inc.  All rights reserved.
//
// Copyright (c) 2020 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Command durableflow-worker is the process entry point wiring a transport,
// a logger, a registry and the two worker loops together. It is
// deliberately thin -- a pass-through to worker.New, exactly like the
// teacher's own worker package is a pass-through to internal -- since
// registering actual workflow/activity handlers is the application's job,
// not this binary's; production users import durableflow/worker and
// write their own main, this command exists to exercise the wiring.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/opentracing/opentracing-go"
	jaeger "github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"

	"github.com/durableflow/durableflow"
	"github.com/durableflow/durableflow/worker"
)

func main() {
	var (
		endpoint = flag.String("endpoint", "", "base URL of the remote workflow service")
		domain   = flag.String("domain", "", "SWF-style domain")
		taskList = flag.String("task-list", "", "task list this worker polls")
		workflowsOnly = flag.Bool("workflows-only", false, "run only the decider loop")
		activitiesOnly = flag.Bool("activities-only", false, "run only the activity worker loop")
		serviceName = flag.String("service-name", "durableflow-worker", "service name reported to tracing")
	)
	flag.Parse()

	if *endpoint == "" || *domain == "" || *taskList == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	closer, err := setupTracing(*serviceName)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	} else {
		defer closer.Close()
	}

	transport := durableflow.NewHTTPTransport(*endpoint)
	registry := durableflow.NewRegistry()

	var opts []worker.Option
	opts = append(opts, worker.WithLogger(logger))
	if *workflowsOnly {
		opts = append(opts, worker.WithoutActivityWorker())
	}
	if *activitiesOnly {
		opts = append(opts, worker.WithoutWorkflowWorker())
	}

	w := worker.New(transport, registry, *domain, *taskList, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	cancel()
	w.Stop()
}

// setupTracing wires github.com/uber/jaeger-client-go as the global
// opentracing.Tracer. Neither the decider nor the activity worker loop
// creates spans today (no SPEC_FULL.md component names distributed
// tracing as a concern of the replay core), so this is the CLI's own
// ambient instrumentation rather than something internal/ depends on --
// the one concrete home this dependency has in the whole module.
func setupTracing(serviceName string) (closer io.Closer, err error) {
	cfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans: false,
		},
	}
	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}
