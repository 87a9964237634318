// Package services implements the driving port interfaces.
// Services contain the core business logic (chunking, hybrid ranking,
// prompt assembly, the question flow) and orchestrate calls to driven
// ports (adapters).
//
// Services are pure Go with no external dependencies beyond domain.
package services
