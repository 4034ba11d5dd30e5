// Package features groups the async primitives built on pkg/vango.
//
//   - resource: async values keyed by a reactive source, seeded from the
//     hydration payload on the client
//   - suspense: boundaries that show a fallback while a resource read in
//     their body is pending
package features
