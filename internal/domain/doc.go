// Package domain contains the core business entities of the Natours API:
// tours, users and the aggregate reports built from tours. Entities carry
// their own validation rules and derived values, independent of any storage
// or delivery mechanism.
package domain
