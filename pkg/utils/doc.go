// Package utils provides vector math, top-K selection and bounded
// concurrency helpers shared by the semantic and embedding packages.
package utils
