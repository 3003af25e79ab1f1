// Package store defines the persistence contracts of the API. Tours and
// users are kept behind the TourStore and UserStore interfaces so services
// never depend on a particular database; the platform packages provide the
// PostgreSQL and MongoDB implementations.
package store
