// Package api holds the HTTP handlers of the tour and user resources. Handlers
// return errors instead of writing them; shared.ErrorResponder renders every
// failure after MapError has turned service sentinels into client faults.
package api
