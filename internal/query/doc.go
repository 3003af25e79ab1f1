// Package query turns flat request parameters into a Shaped query: a
// conjunctive filter, a sort order, a field projection and a pagination
// window.
//
// Shaping is a pipeline of pure steps. Each Step receives the query built so
// far together with the request parameters and returns a new query, so
// every step can be exercised on its own. Nothing here touches storage;
// adapters render a Shaped query into their own query language with the
// help of a Schema.
package query
