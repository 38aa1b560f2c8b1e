// Package manifest defines the declarative pipeline document.
//
// A pipeline manifest is a YAML file describing an ordered list of
// stages. Each stage starts from a base environment (an OCI archive or
// a pre-imported image tag), executes steps (shell commands, host
// copies, and cross-stage artifact copies), and declares which named
// build parameters it needs. The final stage is the release environment
// and carries the entrypoint for the exported image.
//
// Example manifest:
//
//	name: rust-api
//	params: [DATABASE_URL]
//	stages:
//	  - name: build
//	    from: images/rust.tar
//	    transient: true
//	    params: [DATABASE_URL]
//	    steps:
//	      - copy: ". /app"
//	      - workdir: /app
//	      - run: cargo build --release
//	  - name: release
//	    from: images/debian-slim.tar
//	    params: [DATABASE_URL]
//	    entrypoint: ["/usr/local/bin/rust_api"]
//	    steps:
//	      - copy: "build:/app/target/release/rust_api /usr/local/bin/rust_api"
//
// Parsing and validation are separate: [Load] and [Parse] only decode
// the document, [Pipeline.Validate] enforces the structural rules.
package manifest
