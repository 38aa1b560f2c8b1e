// Package pipeline executes build pipelines against container runtimes.
//
// A pipeline is an ordered sequence of stages, each backed by a
// container created from a base environment. Execution resolves the
// externally supplied build parameters against every stage's
// declarations first: a stage gets exactly the values it declares,
// never inherited ones, and a missing value aborts the run before any
// container starts. Stages then build in order: shell commands, host
// copies, and cross-stage artifact handoffs, with the final release
// stage exported as an OCI image carrying the declared entrypoint.
// Multi-platform builds repeat the pipeline per platform, writing each
// result to a platform-specific output directory.
//
// Container operations are delegated to the runtime package. Step state
// (environment, working directory, shell) accumulates across steps
// within a stage and resets between stages.
//
// Example usage:
//
//	result, err := pipeline.Run(ctx, rt, pipeline.Options{
//	    Pipeline: p,
//	    Output:   "dist",
//	    Root:     ".",
//	    Params:   map[string]string{"DATABASE_URL": dbURL},
//	})
//	if err != nil {
//	    return err
//	}
package pipeline
