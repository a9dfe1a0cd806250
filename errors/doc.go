// Package errors provides the error taxonomy shared by the container, its
// registries and the bootstrap layer. Every error is an *AppError carrying a
// machine-readable code; resolution failures keep their code when they
// propagate through nested constructors, factories and injection points.
package errors
