// Package domain contains the shared types of the Stagehand core: the
// project model, the attached session, configuration options, container
// format classifications, cloud log entries, and the error taxonomy.
//
// The package depends on nothing else in the module so that the
// controller and every adapter can share these types freely.
package domain
