// Package mocks provides centralized mock implementations for testing.
//
// Every mock has a function field per interface method. When the field is
// set it decides the result; otherwise the mock falls back to a small
// in-memory default so simple tests need no setup.
//
// Usage:
//
//	import "github.com/phrazzld/natours-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    jwtService := &mocks.MockJWTService{
//	        GenerateTokenFn: func(ctx context.Context, userID uuid.UUID) (string, error) {
//	            return "mocked-token", nil
//	        },
//	    }
//
//	    // Use the mock in your test...
//	}
//
// Test packages that are mocked here must use an external _test package to
// import them without an import cycle.
package mocks
