// Package mongodb implements the store interfaces on MongoDB.
//
// Shaped queries are rendered to a bson filter plus find options, and the
// report queries run as aggregation pipelines. Documents use the client
// field names, with the identifier stored as a string _id.
package mongodb
